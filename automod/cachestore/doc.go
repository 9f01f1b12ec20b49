// Cache for short-lived lookups against the chat transport, with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// The command handler uses this to remember group admin lists, so that every admin-only command does not cost a round trip to the chat service.
package cachestore
