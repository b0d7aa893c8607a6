package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/billiards/internal/billiards"
	"github.com/playmatatu/billiards/internal/cache"
	"github.com/playmatatu/billiards/internal/game"
	"github.com/playmatatu/billiards/internal/shot"
	"github.com/playmatatu/billiards/internal/store"
)

// errInvalidInput marks request values that failed validation.
var errInvalidInput = errors.New("invalid input")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidInput),
		errors.Is(err, billiards.ErrInvalidBall),
		errors.Is(err, game.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, shot.ErrDegenerateShot),
		errors.Is(err, billiards.ErrCapacityExceeded):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondJSONError writes err as a JSON error body and aborts the request.
// Internal errors are not echoed to the client.
func respondJSONError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
		c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// respondPageError writes err as a short HTML page and aborts the request.
func respondPageError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
		c.Error(err)
	}
	c.HTML(status, "error.tmpl", gin.H{"Status": status, "Message": msg})
	c.Abort()
}

// paramID parses a non-negative integer path parameter.
func paramID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errInvalidInput, name)
	}
	return id, nil
}

// finite rejects NaN and infinite form values.
func finite(name string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", errInvalidInput, name)
		}
	}
	return nil
}

// checkSpeed rejects form velocities above billiards.MaxSpeed.
func checkSpeed(name string, dx, dy float64) error {
	if v := billiards.NewCoordinate(dx, dy).Length(); v > billiards.MaxSpeed {
		return fmt.Errorf("%w: %s must not exceed %g mm/s", errInvalidInput, name, billiards.MaxSpeed)
	}
	return nil
}

// bindError wraps a gin binding failure.
func bindError(err error) error {
	return fmt.Errorf("%w: %v", errInvalidInput, err)
}

// frameLoader reads frames through the frame cache, opening a session only
// on a cache miss.
func frameLoader(st *store.Store, frames *cache.Frames) func(ctx context.Context, id int) (billiards.Table, error) {
	read := func(ctx context.Context, id int) (billiards.Table, error) {
		sess, err := st.Session(ctx)
		if err != nil {
			return billiards.Table{}, err
		}
		defer sess.Close()
		return sess.ReadFrame(ctx, id)
	}
	return func(ctx context.Context, id int) (billiards.Table, error) {
		return frames.Load(ctx, id, read)
	}
}
