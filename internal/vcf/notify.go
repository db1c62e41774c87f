package vcf

// Notifier is told when an export is about to start. Calls are fire-and-forget:
// the encoder never waits for them and ignores whatever they do.
type Notifier interface {
	NotifyExportStarting(total int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(total int)

// NotifyExportStarting calls f.
func (f NotifierFunc) NotifyExportStarting(total int) {
	f(total)
}
