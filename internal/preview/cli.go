package preview

import (
	"io"
)

// ShowHelp prints usage information for the preview tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Paddock Rank Preview
====================

Prints the candidate list the matching engine produces for riders, either
from an in-process engine seeded with a fixture catalog or from a running
server.

Usage:
  go run ./cmd/rank-preview [options]

Options:
  -fixtures string
        Fixture catalog for the in-process engine (default "configs/fixtures.yaml")
  -rider string
        Comma separated rider ids (default: every rider in the catalog)
  -limit int
        Candidates per rider (default 10)
  -strategy string
        Scoring strategy: additive or weighted (default from config)
  -explain string
        Explain one listing instead of ranking
  -url string
        Query a running server instead (needs -rider)
  -timeout duration
        HTTP request timeout (default 10s)
  -json
        Emit JSON
  -help
        Show this help message

Environment variables with the PADDOCK_ prefix apply as for the server.

Examples:
  # Rank every demo rider with the weighted strategy
  go run ./cmd/rank-preview -strategy weighted

  # Why is a listing missing for a rider?
  go run ./cmd/rank-preview -rider rider-dario -explain listing-luna

  # Ask a running server
  go run ./cmd/rank-preview -url http://localhost:9080 -rider rider-clara
`)
}
