package engine

import "github.com/anatolykoptev/go-kit/strutil"

// MaxErrorRunes caps error text kept in history rows; yt-dlp stderr can run
// to many kilobytes for a single failure.
const MaxErrorRunes = 2000

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
