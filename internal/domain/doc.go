// Package domain contains the core business entities for the exam
// generation service: jobs, exam records, and the closed enums (category,
// job status, CEFR level) that govern them. Entities validate themselves;
// persistence and transport concerns live elsewhere.
package domain
