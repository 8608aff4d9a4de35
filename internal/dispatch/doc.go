// Package dispatch decides how an exam request becomes a job: it creates
// the exam record and the job row, then triggers a worker invocation via a
// Launcher. Triggering is at-least-once; the job store's claim operation is
// what makes duplicate triggers safe.
package dispatch
