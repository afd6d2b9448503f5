package scoring

// Category classifies a recordable action by its score effect.
type Category string

const (
	CategoryEarned  Category = "earned"
	CategoryFault   Category = "fault"
	CategoryNeutral Category = "neutral"
)

// BlockType selects how a block is recorded: a point block earns a point,
// a touch-only block is renamed to neutralBlocks and never scores.
type BlockType string

const (
	BlockTypePoint BlockType = "point"
	BlockTypeTouch BlockType = "touch"
)

// catalog is the fixed table of recordable actions. Every stat has exactly
// one category at record time.
var catalog = map[string]Category{
	"aces":   CategoryEarned,
	"spikes": CategoryEarned,
	"blocks": CategoryEarned,
	"tips":   CategoryEarned,
	"dumps":  CategoryEarned,
	"digs":   CategoryEarned,
	"points": CategoryEarned,

	"serveErrors": CategoryFault,
	"spikeErrors": CategoryFault,
	"netTouches":  CategoryFault,
	"footFaults":  CategoryFault,
	"carries":     CategoryFault,
	"reaches":     CategoryFault,
	"outOfBounds": CategoryFault,
	"faults":      CategoryFault,

	"neutralBlocks": CategoryNeutral,
}

// CategoryOf returns the category for a stat name.
func CategoryOf(name string) (Category, bool) {
	c, ok := catalog[name]
	return c, ok
}

// StatNames returns every recordable stat name, in no particular order.
func StatNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	return names
}

// NormalizeStat applies the block special case before catalog lookup:
// a block submitted as touch-only becomes neutralBlocks.
func NormalizeStat(name string, blockType BlockType) string {
	if name == "blocks" && blockType == BlockTypeTouch {
		return "neutralBlocks"
	}
	return name
}
