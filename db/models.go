package db

// Preference keys
const (
	KeyLastSession  = "last_session_id"
	KeyWindowWidth  = "window_width"
	KeyWindowHeight = "window_height"
)
