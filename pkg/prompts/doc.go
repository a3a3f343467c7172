// Package prompts renders the role-tagged prompt segments of each pipeline stage.
//
// The built-in templates are written for Korean-speaking learners. Any of them
// can be replaced by name, either programmatically with WithTemplates or from a
// Markdown prompt pack (see the loam adapter).
package prompts
