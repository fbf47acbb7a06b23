package repository

import "errors"

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (memory, postgres) inside this directory.
//
// Contract shared by all implementations: a missing row is reported as
// database/sql.ErrNoRows regardless of backing store, so services can map
// errors the same way for every driver.

// ErrInsufficientBalance is returned by AccountRepository.ApplyDelta when the
// requested delta would take the balance below zero.
var ErrInsufficientBalance = errors.New("insufficient balance")

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
