package interfaces

import (
	"html/template"
	"time"
)

// Display receives rendered fragments for named mount points. Replace swaps
// the whole fragment atomically so readers never observe partial output.
type Display interface {
	Replace(mount string, fragment template.HTML)
	MarkUpdated(at time.Time)
}
