package ports

// ProbeInitializer scaffolds a probe directory (config, targets, reports).
type ProbeInitializer interface {
	Init(root string, force bool) error
}
