// Package triage implements the issue triage pipeline: fetch open issues,
// skip those that already carry a priority label, ask an LLM for a
// recommendation, plan label/assign/comment actions and execute them
// against the tracker while accumulating a Session record.
package triage
