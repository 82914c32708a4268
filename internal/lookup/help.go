package lookup

// HelpEntry documents one chat command.
type HelpEntry struct {
	Usage       string `json:"usage" yaml:"usage"`
	Description string `json:"description" yaml:"description"`
}

// Help returns the command reference for the given prefix.
func Help(prefix string) []HelpEntry {
	return []HelpEntry{
		{Usage: prefix + "value <item>", Description: "Look up the value, demand and status of <item>."},
		{Usage: prefix + "trade <item1> [+ <item2> ...] for <target>", Description: "Check a trade; the result is LOWBALL, FAIR or OVERPAY."},
		{Usage: prefix + "highdemand [demand] [limit]", Description: "List items with demand at or above <demand> (default 7, up to 20 items)."},
		{Usage: prefix + "info", Description: "Show this message."},
	}
}
