// Package model provides the data structures shared between the pipeline
// package and its option packages. It defines step outcomes, step results,
// step descriptions, and the option hooks called around a pipeline run.
package model
