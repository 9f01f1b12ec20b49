package command

const (
	textUnknownCommand = "❌ Unknown command. Use /help to see available commands."
	textAdminRequired  = "❌ This command requires admin permissions."
	textCommandError   = "❌ An error occurred while processing the command."
	textGroupOnly      = "❌ This command can only be used in groups."

	textGroupAlreadyEnabled = "ℹ️ This group is already enabled for the bot."
	textGroupNotEnabled     = "ℹ️ This group is not currently enabled for the bot."
	textGroupEnableFailed   = "❌ Error enabling group. Please try again."
	textGroupDisableFailed  = "❌ Error disabling group. Please try again."

	textGroupEnabled = "✅ **Group Enabled Successfully!**\n\n" +
		"📝 Group: %s\n" +
		"🤖 The bot will now monitor and classify messages in this group.\n" +
		"📊 User statistics will be tracked.\n" +
		"🛡️ Offensive messages will be automatically moderated."

	textGroupDisabled = "✅ **Group Disabled Successfully!**\n\n" +
		"🚫 The bot will no longer monitor this group.\n" +
		"📊 Existing user statistics are preserved.\n" +
		"💡 Use /addgroup to re-enable the bot in this group."

	textWarnUsage           = "Usage: /warn @user [reason]"
	textWarnNoTarget        = "❌ Please mention a user to warn."
	textWarnGiven           = "⚠️ Warning given to user.\nReason: %s\nTotal warnings: %d"
	textRemoveWarnNoTarget  = "❌ Please mention a user to remove warning from."
	textWarnRemoved         = "✅ Warning removed from user.\nRemaining warnings: %d"
	textNoWarnings          = "❌ No warnings found for this user."
	defaultWarnReason       = "No reason provided"
	manualWarningPrefix     = "Manual warning: "
	textAppreciateUsage     = "Usage: /appreciate @user [reason]"
	textAppreciateNoTarget  = "❌ Please mention a user to appreciate."
	textAppreciationGiven   = "👏 Appreciation given to user!\nReason: %s\nTotal appreciations: %d"
	textRemoveApprNoTarget  = "❌ Please mention a user to remove appreciation from."
	textAppreciationRemoved = "✅ Appreciation removed from user.\nRemaining appreciations: %d"
	textNoAppreciations     = "❌ No appreciations found for this user."
	defaultAppreciateReason = "Great contribution!"

	textTopUsage = "❌ Unknown field. Usage: /top [totalMessages|Funny|Plain|Helpful|Curious] [count]"

	textHelp = "🤖 *Moderation Bot Commands*\n\n" +
		"*Group Management (Admin):*\n" +
		"/addgroup - Enable bot in current group\n" +
		"/removegroup - Disable bot in current group\n" +
		"/listgroups - List all enabled groups\n\n" +
		"*Moderation Commands (Admin):*\n" +
		"/warn @user [reason] - Give a manual warning\n" +
		"/removewarn @user - Remove a warning\n" +
		"/appreciate @user [reason] - Give appreciation\n" +
		"/removeappreciation @user - Remove appreciation\n\n" +
		"*Stats Commands (Admin):*\n" +
		"/stats [@user] - Show stats (your own or mentioned user)\n" +
		"/allstats - Show all users' stats table\n" +
		"/top [field] [count] - Show the top users by messages or category\n" +
		"/help - Show this help message\n\n" +
		"*Auto Features:*\n" +
		"• Bot only works in enabled groups\n" +
		"• Messages are automatically classified\n" +
		"• Offensive messages are auto-deleted with warning\n" +
		"• Stats are tracked for all message types\n\n" +
		"*Note:* Bot must be enabled in a group using /addgroup before it will monitor messages. " +
		"Instead of mentioning a user, you can also reply to one of their messages."
)
