package viewmodel

// FormField is one input of a resource form.
type FormField struct {
	Name      string
	Label     string
	Type      string
	Required  bool
	MaxLen    int
	Value     string
	Error     string
	Secret    bool
	Multiline bool
}

// Row is one rendered table row.
type Row struct {
	ID    string
	Cells []string
}

// Table is the list table of a resource screen.
type Table struct {
	Route     string
	Columns   []string
	Rows      []Row
	Total     int // records before filtering
	Query     string
	LoadError string
}

// Empty reports whether no row is visible.
func (t Table) Empty() bool { return len(t.Rows) == 0 }
