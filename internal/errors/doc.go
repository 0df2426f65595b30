// Package errors provides structured, actionable error messages for dragd.
//
// Every error carries a code from the registry, a category, a short message
// and optionally a detail paragraph, a hint and the underlying cause. Errors
// about the config file can also point at the offending line.
//
// # Error Codes
//
//   - E1xx: configuration
//   - E2xx: wire protocol
//   - E3xx: drag journal
//   - E4xx: documents and selectors
//
// # Usage
//
//	err := errors.New("E102").
//	    WithLocation("dragd.json", 7, 14).
//	    Wrap(syntaxErr)
//
//	errors.PrintError(err)
//	// ERROR E102: Config file is not valid JSON
//	//
//	//   dragd.json:7:14
//	//
//	//        5 │   "drag": {
//	//        6 │     "draggable": ".card",
//	//   →    7 │     "deadZone": 3,,
//	//          │              ^
//	//        8 │   }
package errors
