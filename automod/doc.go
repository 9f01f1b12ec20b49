// Automated moderation pipeline for group chats.
//
// This package (`github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod`) holds the types shared across the pipeline: the closed set of content categories, inbound and queued messages, the tagged classification result, and the chat transport interface. Inbound group messages are queued and classified at a bounded rate by an external oracle (with a local denylist fast path); severely offensive messages are removed and the sender warned, and everything else is tallied per user in a durable ledger.
//
// See `automod/engine` for the queue and decision engine, and `cmd/modbot` for a daemon built on this package.
package automod
