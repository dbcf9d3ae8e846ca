package utils

// Truncate はsを先頭からnルーンまでに切り詰め、切り詰めた場合は "..." を付ける。
// マルチバイト文字の途中で切らない。
func Truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i] + "..."
		}
		count++
	}
	return s
}
