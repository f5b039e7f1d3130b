package treesitter

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// ErrParserPoolClosed indicates parser acquisition failed because the
// pool is closed.
var ErrParserPoolClosed = errors.New("treesitter: parser pool is closed")

// languageParser wraps one *tree_sitter.Parser instance.
type languageParser struct {
	parser    *tree_sitter.Parser
	closeOnce sync.Once
}

func newLanguageParser() *languageParser {
	return &languageParser{parser: tree_sitter.NewParser()}
}

func (lp *languageParser) close() {
	if lp == nil {
		return
	}
	lp.closeOnce.Do(func() {
		lp.parser.Close()
	})
}

// ParserPool manages a bounded set of *tree_sitter.Parser instances so
// concurrent Analyze/Parse calls don't serialize on a single parser.
// Adapted from the teacher's ParserPool (internal/treesitter/parser.go),
// dropping the per-language tagging since this host speaks only Perl.
type ParserPool struct {
	parsers chan *languageParser
	closeCh chan struct{}
	closed  atomic.Bool
	once    sync.Once
	holders sync.WaitGroup
}

func defaultPoolSize() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// NewParserPool creates a pool sized to the number of CPUs (runtime.NumCPU).
func NewParserPool() *ParserPool {
	return NewParserPoolWithSize(defaultPoolSize())
}

// NewParserPoolWithSize creates a pool with explicit capacity.
func NewParserPoolWithSize(size int) *ParserPool {
	if size <= 0 {
		size = 1
	}
	p := &ParserPool{
		parsers: make(chan *languageParser, size),
		closeCh: make(chan struct{}),
	}
	for range size {
		p.parsers <- newLanguageParser()
	}
	return p
}

// Get acquires a parser from the pool, blocking until one is free or the
// pool is closed.
func (p *ParserPool) Get() (*languageParser, error) {
	if p.closed.Load() {
		return nil, ErrParserPoolClosed
	}
	select {
	case lp := <-p.parsers:
		if p.closed.Load() {
			lp.close()
			return nil, ErrParserPoolClosed
		}
		p.holders.Add(1)
		return lp, nil
	case <-p.closeCh:
		return nil, ErrParserPoolClosed
	}
}

// Release returns a parser to the pool.
func (p *ParserPool) Release(lp *languageParser) {
	if lp == nil {
		return
	}
	defer p.holders.Done()

	if p.closed.Load() {
		lp.close()
		return
	}
	select {
	case p.parsers <- lp:
	case <-p.closeCh:
		lp.close()
	}
}

// Close releases every pooled parser's resources.
func (p *ParserPool) Close() error {
	p.once.Do(func() {
		p.closed.Store(true)
		close(p.closeCh)
		p.holders.Wait()

		for {
			select {
			case lp := <-p.parsers:
				lp.close()
			default:
				return
			}
		}
	})
	return nil
}
