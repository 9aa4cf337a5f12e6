package icon

// Icon identifies a symbol shown next to CLI output.
type Icon int

const (
	Success Icon = iota + 1
	Fail
	Warn
	Progress
	Resolve
	Select
	Download
	Merge
)

// Columns: emoji, nerd, plain, kaomoji, squares.
var icons = map[Icon]glyphs{
	Success:  {"🎉", "", "[ok]", "(ᵔᴥᵔ)", "🟩"},
	Fail:     {"💀", "", "[x]", "(╥﹏╥)", "🟥"},
	Warn:     {"⚠️", "", "[!]", "(・_・;)", "🟨"},
	Progress: {"⏳", "", "...", "(・・)", "🟦"},
	Resolve:  {"🔎", "", "[?]", "(￣ー￣)", "⬜"},
	Select:   {"🎚️", "", "[=]", "(・ω・)ノ", "🟫"},
	Download: {"📥", "", "[v]", "(っ˘ڡ˘ς)", "🟪"},
	Merge:    {"🧩", "", "[+]", "(ง •̀_•́)ง", "🟧"},
}
