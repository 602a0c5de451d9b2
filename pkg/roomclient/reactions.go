package roomclient

// Reactions is the catalog of reaction values the client will display.
// Unknown values received over the wire are ignored.
var Reactions = []string{
	"👍",
	"❤️",
	"🤠",
	"😂",
	"🥰",
	"😮",
	"😢",
	"😣",
	"😡",
	"👏",
	"🎉",
	"🔥",
}

// KnownReaction reports whether a value belongs to the catalog.
func KnownReaction(v string) bool {
	for _, r := range Reactions {
		if r == v {
			return true
		}
	}
	return false
}
