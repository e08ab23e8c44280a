package pattern

// Item states drive icon and color choice in renderers.
const (
	StatePass    = "pass"
	StateFail    = "fail"
	StateSkip    = "skip"
	StateWIP     = "wip"
	StateManual  = "manual"
	StateUnknown = "unknown"
)

// TestTable lists resolved test cases in catalog order.
type TestTable struct {
	Label   string
	Results []TestTableItem
}

// TestTableItem is a single test case line.
type TestTableItem struct {
	Name    string // test-case id
	Tag     string // catalog type as written, e.g. "auto", "manuel"
	State   string // one of the State* constants
	Status  string // status text, e.g. "NOT_IMPLEMENTED"
	Details string // description, printed on its own line when set
}

func (t *TestTable) Type() PatternType { return PatternTypeTestTable }
