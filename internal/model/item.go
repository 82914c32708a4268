package model

// Item is one row of the value sheet.
type Item struct {
	Name     string `json:"name" yaml:"name"`
	RawValue string `json:"raw_value" yaml:"raw_value"`
	Value    int64  `json:"value" yaml:"value"`
	ValueOK  bool   `json:"value_ok" yaml:"value_ok"` // false when RawValue is not numeric
	Demand   string `json:"demand" yaml:"demand"`
	Status   string `json:"status" yaml:"status"`
}

// Dataset is the ordered, read-only set of items loaded from the sheet.
// Accessors hand out copies so callers cannot mutate the shared cache.
type Dataset struct {
	items []Item
}

// NewDataset builds a Dataset from items. The slice is copied.
func NewDataset(items []Item) *Dataset {
	cp := make([]Item, len(items))
	copy(cp, items)
	return &Dataset{items: cp}
}

// Len returns the number of items.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.items)
}

// Item returns the i-th item in sheet order.
func (d *Dataset) Item(i int) Item {
	return d.items[i]
}

// Items returns a copy of all items in sheet order.
func (d *Dataset) Items() []Item {
	if d == nil {
		return nil
	}
	cp := make([]Item, len(d.items))
	copy(cp, d.items)
	return cp
}

// MatchResult is the outcome of a fuzzy lookup. Item is set only when the
// score reached the acceptance threshold; Score is always the best seen.
type MatchResult struct {
	Item  *Item `json:"item,omitempty" yaml:"item,omitempty"`
	Score int   `json:"score" yaml:"score"`
}

// Found reports whether the lookup produced an item.
func (m MatchResult) Found() bool {
	return m.Item != nil
}
