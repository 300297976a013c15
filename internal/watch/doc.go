// Package watch provides file-watching for stacksift's live re-filter
// workflow. It monitors a crash dump file for changes, debounces rapid
// events, and re-runs the filter pipeline automatically.
package watch
