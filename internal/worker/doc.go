// Package worker contains the single-job-per-invocation execution unit: it
// claims the oldest pending exam job, runs the category-specific generation
// or evaluation routine against the AI provider, and writes back a terminal
// result. Repeated invocation, not internal looping, is how throughput
// scales.
package worker
