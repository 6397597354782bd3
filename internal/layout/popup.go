package layout

// DefaultMaxKeysPerPanelRow bounds the width of a secondary panel.
const DefaultMaxKeysPerPanelRow = 9

// NewPopup builds the secondary panel layout for a key's alternate characters.
// Characters are laid out left to right in rows of at most maxPerRow keys, each
// the size of the triggering key.
func NewPopup(chars string, keyWidth, keyHeight, maxPerRow int) *Layout {
	if maxPerRow <= 0 {
		maxPerRow = DefaultMaxKeysPerPanelRow
	}

	var keys []*Key
	col, row := 0, 0
	for _, r := range chars {
		if col == maxPerRow {
			col = 0
			row++
		}
		keys = append(keys, &Key{
			X:      col * keyWidth,
			Y:      row * keyHeight,
			Width:  keyWidth,
			Height: keyHeight,
			Codes:  []int{int(r)},
			Label:  string(r),
		})
		col++
	}

	return New("popup", keys)
}
