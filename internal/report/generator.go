// Package report renders LLM interpretation reports for finished analyses.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"text/template"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/mingshi/bazi-engine/internal/domain"
	"github.com/mingshi/bazi-engine/pkg/ganzhi"
)

// Level selects how much depth the generated report carries.
type Level string

const (
	LevelSimple        Level = "simple"
	LevelNormal        Level = "normal"
	LevelDetailed      Level = "detailed"
	LevelComprehensive Level = "comprehensive"
)

// levelDepth maps each level onto the depth descriptor interpolated into the
// prompt.
var levelDepth = map[Level]string{
	LevelSimple:        "简要",
	LevelNormal:        "标准",
	LevelDetailed:      "详细",
	LevelComprehensive: "全面详尽",
}

// Sentinel errors surfaced to callers. Transient API failures are retried
// internally; these are the permanent outcomes.
var (
	ErrNoCredentials  = errors.New("missing Gemini credentials")
	ErrInvalidLevel   = errors.New("invalid report detail level")
	ErrContentBlocked = errors.New("report blocked by safety filters")
	ErrEmptyResponse  = errors.New("empty model response")
)

// ParseLevel validates a detail-level string from config, CLI or query.
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := levelDepth[level]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return level, nil
}

const promptTemplate = `你是一位资深的命理分析专家，请根据以下八字信息，生成一份专业的命理分析报告。

用户信息：
姓名：{{.Name}}
性别：{{.Gender}}
出生时间：{{.BirthDate}}

八字信息：
年柱：{{.Year}}
月柱：{{.Month}}
日柱：{{.Day}}
时柱：{{.Hour}}
生肖：{{.Zodiac}}

五行分析：
最旺五行：{{.Strongest}}
缺失五行：{{.Missing}}
日主旺衰：{{.Strength}}
用神：{{.Useful}}
忌神：{{.Unfavorable}}

格局分析：
格局类型：{{.Pattern}}
格局层次：{{.PatternLevel}}

神煞：
吉神：{{.Auspicious}}
凶煞：{{.Inauspicious}}

请生成一份{{.Depth}}的命理分析报告，包括：
1. 综合分析（性格、能力、运势）
2. 各维度详细解读（事业、财运、婚姻、健康等）
3. 个性化建议

要求：
- 语言专业但易懂
- 内容积极正面
- 避免绝对化表述
- 提供实用建议
`

// promptData feeds the prompt template.
type promptData struct {
	Name         string
	Gender       string
	BirthDate    string
	Year         string
	Month        string
	Day          string
	Hour         string
	Zodiac       string
	Strongest    string
	Missing      string
	Strength     string
	Useful       string
	Unfavorable  string
	Pattern      string
	PatternLevel string
	Auspicious   string
	Inauspicious string
	Depth        string
}

// Config holds the report client settings.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
}

// Generator renders interpretation reports through the Gemini API. Failures
// never invalidate the analysis they describe; callers keep the computed
// result and treat the report as absent.
type Generator struct {
	client     *genai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	tmpl       *template.Template
	log        zerolog.Logger
}

// NewGenerator creates a generator. An empty API key is rejected up front so
// deployments without credentials skip report wiring entirely.
func NewGenerator(ctx context.Context, cfg Config, log zerolog.Logger) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoCredentials
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Generator{
		client:     client,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		tmpl:       template.Must(template.New("report").Parse(promptTemplate)),
		log:        log.With().Str("module", "report").Logger(),
	}, nil
}

// Generate renders the prompt for one analysis and calls the model. Transient
// API errors are retried with exponential backoff and jitter; blocked or
// empty responses fail immediately.
func (g *Generator) Generate(ctx context.Context, analysis *domain.ChartAnalysis, level Level) (string, error) {
	depth, ok := levelDepth[level]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, level)
	}

	prompt, err := g.buildPrompt(analysis, depth)
	if err != nil {
		return "", err
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return "", err
	}

	g.log.Info().
		Str("id", analysis.ID).
		Str("level", string(level)).
		Int("chars", len(text)).
		Msg("Report generated")

	return text, nil
}

func (g *Generator) buildPrompt(analysis *domain.ChartAnalysis, depth string) (string, error) {
	data := promptData{
		Name:   analysis.Input.Name,
		Gender: string(analysis.Input.Gender),
		BirthDate: fmt.Sprintf("%d年%d月%d日%d时",
			analysis.Input.Year, analysis.Input.Month, analysis.Input.Day, analysis.Input.Hour),
		Year:         analysis.Chart.Year.Label(),
		Month:        analysis.Chart.Month.Label(),
		Day:          analysis.Chart.Day.Label(),
		Hour:         analysis.Chart.Hour.Label(),
		Zodiac:       analysis.Chart.Meta.Zodiac,
		Strongest:    string(analysis.Elements.Strongest),
		Missing:      joinElements(analysis.Elements.Missing),
		Strength:     string(analysis.Strength.Level),
		Useful:       joinElements(analysis.Favorable.Useful),
		Unfavorable:  joinElements(analysis.Favorable.Unfavorable),
		Pattern:      analysis.Pattern.Name,
		PatternLevel: analysis.Pattern.Level,
		Auspicious:   joinOr(analysis.Markers.Auspicious, "无"),
		Inauspicious: joinOr(analysis.Markers.Inauspicious, "无"),
		Depth:        depth,
	}

	var buf bytes.Buffer
	if err := g.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render report prompt: %w", err)
	}
	return buf.String(), nil
}

func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
		if err == nil {
			text, perr := extractText(resp)
			if perr == nil {
				return text, nil
			}
			// Blocked or empty responses do not improve on retry.
			return "", perr
		}

		lastErr = err
		g.log.Warn().
			Err(err).
			Int("attempt", attempt+1).
			Int("max_attempts", g.maxRetries+1).
			Msg("Gemini call failed")

		if attempt == g.maxRetries {
			break
		}

		select {
		case <-time.After(backoffDelay(g.retryDelay, attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("gemini call failed after %d attempts: %w", g.maxRetries+1, lastErr)
}

// backoffDelay computes delay = base * 2^attempt scaled by a jitter factor in
// [0.5, 1.0).
func backoffDelay(base time.Duration, attempt int) time.Duration {
	backoff := float64(base) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	if resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
		return "", ErrContentBlocked
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

func joinElements(els []ganzhi.Element) string {
	if len(els) == 0 {
		return "无"
	}
	names := make([]string, 0, len(els))
	for _, el := range els {
		names = append(names, string(el))
	}
	return strings.Join(names, "、")
}

func joinOr(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	return strings.Join(items, "、")
}
