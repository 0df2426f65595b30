package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]Template{
	// Configuration (E100-E199)
	"E101": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "dragd looks for dragd.json in the working directory unless --config names another file.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Config file is not valid JSON",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Page file could not be read",
		Detail:   "The page named by the \"page\" setting is served to clients and parsed into each session's document.",
	},
	"E105": {
		Category: CategoryConfig,
		Message:  "Config file could not be written",
	},

	// Protocol (E200-E299)
	"E201": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
	},
	"E202": {
		Category: CategoryProtocol,
		Message:  "Malformed event",
	},
	"E203": {
		Category: CategoryProtocol,
		Message:  "Patch batch could not be encoded",
	},

	// Journal (E300-E399)
	"E301": {
		Category: CategoryJournal,
		Message:  "Journal flush failed",
		Detail:   "Buffered drag records are kept and retried on the next flush.",
	},
	"E302": {
		Category: CategoryJournal,
		Message:  "Journal storage could not be configured",
	},
	"E303": {
		Category: CategoryJournal,
		Message:  "Event log line is invalid",
	},

	// Documents and selectors (E400-E499)
	"E401": {
		Category: CategoryDocument,
		Message:  "Page could not be parsed",
	},
	"E402": {
		Category: CategoryDocument,
		Message:  "Invalid selector",
	},
	"E403": {
		Category: CategoryDocument,
		Message:  "Selector matches nothing in the page",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
