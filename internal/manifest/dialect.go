package manifest

// dialect identifies which of the three supported manifest shapes (§4.2)
// produced a loaded Manifest.
type dialect int

const (
	dialectProjectTasks dialect = iota
	dialectStandaloneTasks
	dialectCompatScripts
)
