package app

// Key binding constants used in handleKey.
const (
	KeyQuit      = "q"
	KeyCtrlC     = "ctrl+c"
	KeyHome      = "1"
	KeyEvents    = "2"
	KeyFolders   = "3"
	KeyDown      = "j"
	KeyUp        = "k"
	KeyEnter     = "enter"
	KeyEscape    = "esc"
	KeyBack      = "backspace"
	KeyAdd       = "a"
	KeyDelete    = "x"
	KeyRecord    = "r"
	KeyPause     = "p"
	KeySummarize = "s"
	KeyToday     = "t"
	KeyWeek      = "w"
	KeyMonth     = "m"
	KeyEdit      = "e"
	KeyConfirm   = "y"
	KeyDeny      = "n"
	KeyTab       = "tab"
)
