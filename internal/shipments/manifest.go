package shipments

import (
	"fmt"
	"strconv"
	"strings"
)

// manifestSeparator is the legacy token between a SKU name and its count.
// SKU names may themselves contain spaces, so parsing splits on the
// rightmost occurrence.
const manifestSeparator = " x "

// ManifestLine is one (sku, quantity) pair of a shipment manifest.
type ManifestLine struct {
	SKU string `json:"sku"`
	Qty int    `json:"qty"`
}

// EncodeManifest renders lines in the legacy "sku x qty, sku x qty" wire
// format stored in the shipments table.
func EncodeManifest(lines []ManifestLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, fmt.Sprintf("%s%s%d", line.SKU, manifestSeparator, line.Qty))
	}
	return strings.Join(parts, ", ")
}

// ParseManifest decodes the legacy wire format back into structured lines.
// Parsing is deliberately lenient so manifests written by older tooling
// still load: a segment without the separator becomes a quantity of 1, and
// a non-integer count falls back to 1 rather than aborting the receipt.
func ParseManifest(manifest string) []ManifestLine {
	segments := strings.Split(manifest, ",")
	lines := make([]ManifestLine, 0, len(segments))
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}

		sku := segment
		qty := 1
		if idx := strings.LastIndex(segment, manifestSeparator); idx >= 0 {
			sku = strings.TrimSpace(segment[:idx])
			if parsed, err := strconv.Atoi(strings.TrimSpace(segment[idx+len(manifestSeparator):])); err == nil && parsed > 0 {
				qty = parsed
			}
		}
		if sku == "" {
			continue
		}
		lines = append(lines, ManifestLine{SKU: sku, Qty: qty})
	}
	if len(lines) == 0 {
		return nil
	}
	return lines
}
