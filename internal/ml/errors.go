package ml

import "errors"

var (
	// ErrNotTrained is returned by Predict before a successful Train.
	ErrNotTrained = errors.New("model must be trained before prediction")

	// ErrInsufficientData is returned when there are no labelled feature rows
	// to train on, or when the latest row lacks complete indicator history.
	ErrInsufficientData = errors.New("not enough data for indicators")
)
