// Package workspace owns the per-run scratch directories under paths.work_dir.
//
// Every run gets a run-<id> directory and every artifact inside it carries
// the run id in its filename, so concurrent runs never collide. Release
// removes the directory on every exit path; CleanStale sweeps directories
// left behind by crashed processes.
package workspace
