package service

import (
	"context"
	"errors"
	"sync"
)

// PostRequest pairs a posting payload with its target account.
type PostRequest struct {
	AccountID string
	Input     PostTransactionInput
}

// PostError accumulates the individual failures of a bulk posting run.
type PostError struct {
	Errors []error
}

func (e *PostError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *PostError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *PostError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// BulkPoster posts many transactions through the engine using a worker pool.
// Individual failures (for example insufficient funds on a randomly generated
// withdrawal) do not stop the run; they are collected and returned together.
type BulkPoster struct {
	service *TransactionService
	workers int
}

// NewBulkPoster creates a BulkPoster with the provided concurrency.
func NewBulkPoster(service *TransactionService, workers int) *BulkPoster {
	if workers <= 0 {
		workers = 4
	}
	return &BulkPoster{
		service: service,
		workers: workers,
	}
}

// Post processes the provided requests concurrently.
func (bp *BulkPoster) Post(ctx context.Context, requests []PostRequest) error {
	if len(requests) == 0 {
		return nil
	}

	indexCh := make(chan int)
	errCh := make(chan error, len(requests))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			req := requests[idx]
			if _, err := bp.service.Post(ctx, req.AccountID, req.Input); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < bp.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < len(requests); i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var postErr PostError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		postErr.append(err)
	}
	return postErr.asError()
}
