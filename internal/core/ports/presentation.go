package ports

// ArtifactSink stores temporary UTF-8 text files under a scratch directory.
type ArtifactSink interface {
	// Write stores the content in a uniquely named file and returns its path.
	Write(name, content string) (string, error)
	// Remove deletes the file at the given path.
	Remove(path string) error
}

// ShareSheet lets the user export a file. done is invoked exactly once,
// completed tells whether the user actually performed the share action.
type ShareSheet interface {
	Present(path string, done func(completed bool))
}

// Presenter shows feedback to the user.
type Presenter interface {
	ShowError(err error)
	ShowSuccessOverlay(account string)
}

// BackupDelegate is notified about the terminal outcome of a backup flow.
type BackupDelegate interface {
	OnFinished(account string)
	OnCancelled()
}
