package application

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/satclip/satclip/internal/domain"
)

// FirstSelector picks the first scene in provider order. It is the
// non-interactive default.
type FirstSelector struct {
	Logger *slog.Logger
}

// Select implements the ItemSelector port.
func (s *FirstSelector) Select(_ context.Context, scenes []domain.Scene) (string, bool, error) {
	if len(scenes) == 0 {
		return "", false, nil
	}
	s.Logger.Info("selecting first scene", "item_id", scenes[0].ID)
	return scenes[0].ID, true, nil
}

// FixedSelector picks a caller-supplied scene id. When the id is not
// among the candidates it falls back to the first scene, matching the
// non-interactive override behavior.
type FixedSelector struct {
	ID     string
	Logger *slog.Logger
}

// Select implements the ItemSelector port.
func (s *FixedSelector) Select(_ context.Context, scenes []domain.Scene) (string, bool, error) {
	if len(scenes) == 0 {
		return "", false, nil
	}
	for _, sc := range scenes {
		if sc.ID == s.ID {
			return s.ID, true, nil
		}
	}
	s.Logger.Warn("requested item not among candidates, defaulting to first",
		"requested", s.ID,
		"item_id", scenes[0].ID,
	)
	return scenes[0].ID, true, nil
}

// PromptSelector lists the candidates and reads a pick from In. An empty
// line selects the first scene; "s" skips the AOI; an invalid index falls
// back to the first scene.
type PromptSelector struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger
}

// Select implements the ItemSelector port.
func (s *PromptSelector) Select(_ context.Context, scenes []domain.Scene) (string, bool, error) {
	if len(scenes) == 0 {
		return "", false, nil
	}

	fmt.Fprintln(s.Out, "\nAvailable scenes:")
	for i, sc := range scenes {
		fmt.Fprintf(s.Out, "%2d. %s | %s | CC=%.2f | %s\n",
			i+1, sc.ID, sc.Acquired.Format("2006-01-02T15:04:05Z"), sc.CloudCover, sc.ItemType)
	}
	fmt.Fprint(s.Out, "Enter index to order (ENTER = first, 's' skips this AOI): ")

	scanner := bufio.NewScanner(s.In)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", false, err
		}
		return scenes[0].ID, true, nil
	}

	pick := strings.ToLower(strings.TrimSpace(scanner.Text()))
	switch {
	case pick == "s":
		return "", false, nil
	case pick == "":
		return scenes[0].ID, true, nil
	}

	i, err := strconv.Atoi(pick)
	if err != nil || i < 1 || i > len(scenes) {
		s.Logger.Warn("invalid selection, defaulting to first", "input", pick)
		return scenes[0].ID, true, nil
	}
	return scenes[i-1].ID, true, nil
}
