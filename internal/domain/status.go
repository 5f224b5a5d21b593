package domain

// StorageStatus is the backend's self-reported state: cluster health
// ("green", "yellow", ...) and the version string it runs.
type StorageStatus struct {
	Health  string
	Version string
}
