// Package boundary 將可能包含多份食譜的長文字切成單一食譜的片段。
package boundary

import (
	"context"
	"strings"

	"recipe-importer/internal/core/classify"
	"recipe-importer/internal/pkg/common"

	"go.uber.org/zap"
)

// Config 切分用的門檻與權重
type Config struct {
	// TitleConfidence 標題行觸發切分所需的信心（嚴格大於）
	TitleConfidence float64
	// MinTitleGap 標題行距離片段起點須超過的行數
	MinTitleGap int
	// MinEndMarkerGap 結束標記距離片段起點須超過的行數
	MinEndMarkerGap int
	// TitleWindow 每個片段檢查標題的非空行數
	TitleWindow int

	ConfidenceWeight float64
	PositionWeight   float64
	CapitalWeight    float64
	WordCountWeight  float64

	// CapitalizedRatio 超過此比例的單字大寫開頭即給大寫加分
	CapitalizedRatio float64
	MinTitleWords    int
	MaxTitleWords    int
}

// DefaultConfig 預設值
func DefaultConfig() Config {
	return Config{
		TitleConfidence:  0.5,
		MinTitleGap:      3,
		MinEndMarkerGap:  5,
		TitleWindow:      5,
		ConfidenceWeight: 0.4,
		PositionWeight:   0.2,
		CapitalWeight:    0.2,
		WordCountWeight:  0.2,
		CapitalizedRatio: 0.6,
		MinTitleWords:    2,
		MaxTitleWords:    10,
	}
}

// Segment 單一食譜片段，StartIndex 與 EndIndex 皆為原始行序號（含）
type Segment struct {
	Title           string   `json:"title"`
	TitleConfidence float64  `json:"title_confidence"`
	Lines           []string `json:"lines"`
	StartIndex      int      `json:"start_index"`
	EndIndex        int      `json:"end_index"`
}

// endMarkers 食譜結尾常見字樣（小寫，子字串比對）
var endMarkers = []string{
	"nutrition facts", "nutrition information", "nutritional information", "nutrition per serving",
	"copyright", "©", "all rights reserved", "print recipe", "recipe card", "did you make this recipe",
}

// IsEndMarker 是否為結尾標記
func IsEndMarker(line string) bool {
	l := strings.ToLower(line)
	for _, m := range endMarkers {
		if strings.Contains(l, m) {
			return true
		}
	}
	return false
}

// Detector 食譜邊界偵測器
type Detector struct {
	classifier *classify.Classifier
	cfg        Config
}

// New 建立偵測器
func New(classifier *classify.Classifier, cfg Config) *Detector {
	if classifier == nil {
		classifier = classify.New(nil)
	}
	if cfg.TitleWindow <= 0 {
		cfg.TitleWindow = DefaultConfig().TitleWindow
	}
	return &Detector{classifier: classifier, cfg: cfg}
}

// Detect 單次前向掃描切分片段；片段依輸入順序、互不重疊。
// 每行只分類一次，結果同時用於切分與標題評分。
func (d *Detector) Detect(ctx context.Context, lines []string) []Segment {
	classified := make([]classify.ClassifiedLine, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		classified[i] = d.classifier.Classify(ctx, line)
	}

	var segments []Segment
	start := 0
	for i, line := range lines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if IsEndMarker(text) {
			if i-start > d.cfg.MinEndMarkerGap {
				segments = d.appendSegment(segments, lines, classified, start, i)
				start = i + 1
			}
			continue
		}
		if _, ok := classify.SectionHeader(text); ok {
			continue
		}

		cl := classified[i]
		if cl.Label == classify.LabelTitle && cl.Confidence > d.cfg.TitleConfidence && i-start > d.cfg.MinTitleGap {
			segments = d.appendSegment(segments, lines, classified, start, i-1)
			start = i
		}
	}
	if start < len(lines) {
		segments = d.appendSegment(segments, lines, classified, start, len(lines)-1)
	}

	common.LogDebug("boundary detection finished",
		zap.Int("lines", len(lines)),
		zap.Int("segments", len(segments)),
	)
	return segments
}

// appendSegment 關閉 [start, end]；全為空白的範圍不輸出
func (d *Detector) appendSegment(segments []Segment, lines []string, classified []classify.ClassifiedLine, start, end int) []Segment {
	seg := Segment{StartIndex: start, EndIndex: end, Lines: []string{}}
	for i := start; i <= end; i++ {
		if text := strings.TrimSpace(lines[i]); text != "" {
			seg.Lines = append(seg.Lines, text)
		}
	}
	if len(seg.Lines) == 0 {
		return segments
	}
	seg.Title, seg.TitleConfidence = d.selectTitle(lines, classified, start, end)
	return append(segments, seg)
}

// selectTitle 在片段前 TitleWindow 個非空行中挑分數最高者，同分取先出現者
func (d *Detector) selectTitle(lines []string, classified []classify.ClassifiedLine, start, end int) (string, float64) {
	best, bestScore := "", -1.0
	seen := 0
	for i := start; i <= end && seen < d.cfg.TitleWindow; i++ {
		text := strings.TrimSpace(lines[i])
		if text == "" {
			continue
		}
		if _, ok := classify.SectionHeader(text); ok {
			continue
		}
		score := d.titleScore(text, classified[i], seen)
		if score > bestScore {
			best, bestScore = text, score
		}
		seen++
	}
	if bestScore < 0 {
		return "", 0
	}
	return best, bestScore
}

// titleScore 加權分數：分類信心、位置、大寫、字數
func (d *Detector) titleScore(text string, cl classify.ClassifiedLine, position int) float64 {
	score := 0.0
	if cl.Label == classify.LabelTitle {
		score += d.cfg.ConfidenceWeight * cl.Confidence
	}
	score += d.cfg.PositionWeight * (1 - float64(position)/float64(d.cfg.TitleWindow))
	if classify.IsAllCaps(text) || classify.CapitalizedRatio(text) > d.cfg.CapitalizedRatio {
		score += d.cfg.CapitalWeight
	}
	if words := len(strings.Fields(text)); words >= d.cfg.MinTitleWords && words <= d.cfg.MaxTitleWords {
		score += d.cfg.WordCountWeight
	}
	return score
}
