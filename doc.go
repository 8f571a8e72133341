// Package hector is the root package of the taskforge module. It holds
// only version information (see Version and GetVersion).
//
// The runnable entry point is the taskrunner command (cmd/taskrunner): it
// loads a task definition YAML, runs its proposer/reviewer/validator/
// formatter workflow to completion, and writes the resulting artifact:
//
//	taskrunner --task-config task.yaml
//
// The runtime itself lives in the packages under pkg/, among them config
// (task definitions), workflow, roleengine, taskmanager, modrequest and
// module (the module-request directives and the modules that serve them),
// rag and vector.
package hector
