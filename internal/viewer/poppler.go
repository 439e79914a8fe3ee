package viewer

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Engine reads page counts and rasterises single pages of a PDF on disk.
type Engine interface {
	PageCount(ctx context.Context, path string) (int, error)
	Render(ctx context.Context, path string, page int) ([]byte, error)
}

// PopplerEngine shells out to the poppler-utils binaries.
type PopplerEngine struct {
	DPI     int
	Timeout time.Duration
}

func NewPopplerEngine(dpi int) *PopplerEngine {
	if dpi <= 0 {
		dpi = 110
	}
	return &PopplerEngine{DPI: dpi, Timeout: 20 * time.Second}
}

func (p *PopplerEngine) PageCount(ctx context.Context, path string) (int, error) {
	out, err := p.run(ctx, "pdfinfo", path)
	if err != nil {
		return 0, err
	}
	return parsePageCount(out)
}

func (p *PopplerEngine) Render(ctx context.Context, path string, page int) ([]byte, error) {
	n := strconv.Itoa(page)
	return p.run(ctx, "pdftoppm",
		"-png", "-singlefile",
		"-f", n, "-l", n,
		"-r", strconv.Itoa(p.DPI),
		path)
}

func (p *PopplerEngine) run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%s not found in PATH", name)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, name, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s: %s", name, msg)
	}
	return out.Bytes(), nil
}

func parsePageCount(info []byte) (int, error) {
	sc := bufio.NewScanner(bytes.NewReader(info))
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
		if err != nil {
			return 0, fmt.Errorf("pdfinfo: bad page count %q", line)
		}
		return n, nil
	}
	return 0, errors.New("pdfinfo: no page count")
}
