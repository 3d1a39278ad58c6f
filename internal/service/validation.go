package service

import (
	"strings"

	"github.com/rinkstats/hockey-stats-service/internal/repository"
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

func normalizePosition(pos string) string {
	return strings.ToUpper(strings.TrimSpace(pos))
}

func isValidPosition(pos string) bool {
	switch pos {
	case "C", "LW", "RW", "D", "G":
		return true
	default:
		return false
	}
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

func isValidGameStatus(status string) bool {
	switch status {
	case "scheduled", "in_progress", "finished":
		return true
	default:
		return false
	}
}
