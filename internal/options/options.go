// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input  string
	Output string // output file for edits, derived from the input name if empty
	Batch  string // glob pattern of files to process
}

// Flags contains behavior options.
type Flags struct {
	Shell  bool // start the interactive query shell
	Verify bool // verify the saved file against the original
	Debug  bool
	Quiet  bool
}

// Query contains the inspection and editing requests.
type Query struct {
	Page    int      // number of the page to dump starting at 1, 0 for none
	Find    string   // hex pattern to search for
	Goto    string   // hex address whose page is dumped
	Patches []string // ADDR=HEXBYTES byte patches
	Texts   []string // ADDR=TEXT ASCII patches
}

// Display contains output formatting options.
type Display struct {
	LowerCase    bool
	NoASCII      bool
	RegionLabels bool
}

// Program options of the editor.
type Program struct {
	Parameters
	Flags
	Query
	Display
}

// HasEdits returns whether any patch was requested.
func (p Program) HasEdits() bool {
	return len(p.Patches) > 0 || len(p.Texts) > 0
}
