package logx

// MaskMarker is appended to every masked identifier.
const MaskMarker = "****"

const maskVisible = 4

// Mask keeps at most the first four characters of an identifier and appends
// MaskMarker. Full provider subject identifiers must never reach a log line.
func Mask(id string) string {
	r := []rune(id)
	if len(r) > maskVisible {
		r = r[:maskVisible]
	}
	return string(r) + MaskMarker
}
