// Package generation defines the boundary between the job processing core
// and external AI providers that generate and grade exam content.
package generation
