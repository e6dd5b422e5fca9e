package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"recipe-importer/internal/core/classify"
	"recipe-importer/internal/core/pipeline"
	"recipe-importer/internal/core/recipe"
	"recipe-importer/internal/pkg/common"
	"recipe-importer/mocks"
)

var cookieLines = []string{
	"CHOCOLATE CHIP COOKIES",
	"2 cups flour",
	"1 cup sugar",
	"Mix dry ingredients.",
	"Bake at 350F.",
}

// labelModel 依固定表格回傳標籤
func labelModel(table map[string]classify.Label) classify.Model {
	return classify.ModelFunc(func(_ context.Context, text string) (classify.Label, float64, error) {
		if l, ok := table[text]; ok {
			return l, 0.95, nil
		}
		return classify.LabelUnknown, 0.1, nil
	})
}

func cookieClassifier() *classify.Classifier {
	return classify.New(labelModel(map[string]classify.Label{
		"CHOCOLATE CHIP COOKIES": classify.LabelTitle,
		"2 cups flour":           classify.LabelIngredient,
		"1 cup sugar":            classify.LabelIngredient,
		"Mix dry ingredients.":   classify.LabelInstruction,
		"Bake at 350F.":          classify.LabelInstruction,
	}))
}

func TestStart_CookieScenario(t *testing.T) {
	var stages []pipeline.Stage
	o := pipeline.New(pipeline.Deps{Classifier: cookieClassifier()},
		pipeline.WithPostProcess(false),
		pipeline.OnProgress(func(s pipeline.Stage) { stages = append(stages, s) }),
	)

	d, err := o.Start(context.Background(), pipeline.LinesSource(cookieLines))
	require.NoError(t, err)

	assert.Equal(t, "CHOCOLATE CHIP COOKIES", d.Title)
	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, d.Ingredients())
	assert.Equal(t, []string{"Mix dry ingredients.", "Bake at 350F."}, d.Instructions())
	assert.Equal(t, cookieLines, d.RawText)
	assert.Len(t, d.ClassifiedLines, 5)
	assert.Empty(t, d.SkippedLines)
	assert.Equal(t, []pipeline.Stage{
		pipeline.StageAcquire, pipeline.StageReconstruct, pipeline.StageClassify, pipeline.StageAssemble,
	}, stages)
	assert.Equal(t, pipeline.StateCompleted, o.State())
	assert.Same(t, d, o.Draft())
	assert.NoError(t, o.Err())
}

func TestStart_CookieScenarioPostProcessed(t *testing.T) {
	o := pipeline.New(pipeline.Deps{Classifier: cookieClassifier()})

	d, err := o.Start(context.Background(), pipeline.LinesSource(cookieLines))
	require.NoError(t, err)

	assert.Equal(t, "Chocolate Chip Cookies", d.Title)
	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, d.Ingredients())
	assert.Equal(t, []string{"Mix dry ingredients.", "Bake at 350F."}, d.Instructions())
}

func TestStart_RuleModelEndToEnd(t *testing.T) {
	text := "CHOCOLATE CHIP COOKIES\n" +
		"Makes 24 cookies\n" +
		"Prep time: 15 mins\n" +
		"2 cups flour\n" +
		"1 cup sugar\n" +
		"Mix dry ingredients.\n" +
		"Bake at 350F.\n" +
		"Notes\n" +
		"Dough keeps for a week\n"

	o := pipeline.New(pipeline.Deps{Classifier: classify.New(classify.NewRuleModel())})
	d, err := o.Start(context.Background(), pipeline.TextSource(text))
	require.NoError(t, err)

	assert.Equal(t, "Chocolate Chip Cookies", d.Title)
	assert.Equal(t, []string{"Makes 24 cookies"}, d.Servings())
	assert.Equal(t, []string{"Prep Time: 15 Minutes"}, d.Timings())
	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, d.Ingredients())
	assert.Equal(t, []string{"Mix dry ingredients.", "Bake at 350F."}, d.Instructions())
	assert.Equal(t, []string{"Dough keeps for a week"}, d.Notes())
}

func TestStart_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		src  pipeline.Source
		want error
	}{
		{"empty text", pipeline.TextSource("  \n\n"), common.ErrNoTextDetected},
		{"no lines", pipeline.LinesSource(nil), common.ErrNoTextDetected},
		{"artifacts only", pipeline.LinesSource([]string{"12", "ab", "7"}), common.ErrEmptyContent},
		{"image without recognizer", pipeline.ImageSource([]byte("png")), common.ErrNoTextDetected},
		{"url without extractor", pipeline.URLSource("https://example.com"), common.ErrInternalError},
		{"unknown kind", pipeline.Source{Kind: "fax"}, common.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var callbackErr error
			o := pipeline.New(pipeline.Deps{}, pipeline.OnError(func(err error) { callbackErr = err }))

			d, err := o.Start(ctx, tt.src)
			assert.Nil(t, d)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, err, callbackErr)
			assert.Equal(t, pipeline.StateError, o.State())
			assert.Equal(t, err, o.Err())
			assert.Nil(t, o.Draft())
		})
	}
}

func TestStart_ImageUsesRecognizer(t *testing.T) {
	image := []byte("fake image bytes")
	rec := new(mocks.MockRecognizer)
	rec.On("RecognizeText", mock.Anything, image).Return(cookieLines)

	o := pipeline.New(pipeline.Deps{Classifier: cookieClassifier(), Recognizer: rec}, pipeline.WithPostProcess(false))
	d, err := o.Start(context.Background(), pipeline.ImageSource(image))
	require.NoError(t, err)
	assert.Equal(t, []string{"2 cups flour", "1 cup sugar"}, d.Ingredients())
	rec.AssertExpectations(t)

	empty := new(mocks.MockRecognizer)
	empty.On("RecognizeText", mock.Anything, image).Return([]string{})
	_, err = pipeline.New(pipeline.Deps{Recognizer: empty}).Start(context.Background(), pipeline.ImageSource(image))
	assert.ErrorIs(t, err, common.ErrNoTextDetected)
}

func TestStart_HTMLSource(t *testing.T) {
	html := `<h2>Garlic Butter</h2><ul><li>4 tbsp butter</li><li>2 cloves garlic</li></ul>
		<p>Melt the butter and stir in the garlic.</p>`

	o := pipeline.New(pipeline.Deps{Classifier: classify.New(classify.NewRuleModel())})
	d, err := o.Start(context.Background(), pipeline.HTMLSource(html))
	require.NoError(t, err)

	assert.Equal(t, "Garlic Butter", d.Title)
	assert.Equal(t, []string{"4 tablespoon butter", "2 cloves garlic"}, d.Ingredients())
	assert.Equal(t, []string{"Melt the butter and stir in the garlic."}, d.Instructions())
}

func TestStart_HTMLAdjacentLists(t *testing.T) {
	html := `<h1>Pancakes</h1><ul><li>2 cups flour</li><li>1 egg</li></ul><ol><li>Mix well.</li></ol>`

	o := pipeline.New(pipeline.Deps{Classifier: classify.New(classify.NewRuleModel())})
	d, err := o.Start(context.Background(), pipeline.HTMLSource(html))
	require.NoError(t, err)

	assert.Equal(t, []string{"2 cups flour", "1 egg"}, d.Ingredients())
	for _, line := range d.RawText {
		assert.NotContains(t, line, "<!--")
	}
}

type stubExtractor struct {
	r   *recipe.Recipe
	err error
}

func (s stubExtractor) ExtractRecipe(context.Context, string) (*recipe.Recipe, error) {
	return s.r, s.err
}

func TestStart_URLSource(t *testing.T) {
	r := &recipe.Recipe{
		Title:           "best banana bread:",
		Servings:        "8 slices",
		IngredientLines: []string{"3 ripe bananas", "1 1/2 cups flour"},
		Instructions:    []string{"mash the bananas", "Bake for 1 hour."},
		Method:          recipe.MethodJSONLD,
	}
	o := pipeline.New(pipeline.Deps{Extractor: stubExtractor{r: r}})

	d, err := o.Start(context.Background(), pipeline.URLSource("https://example.com/bread"))
	require.NoError(t, err)
	assert.Equal(t, "Best banana bread", d.Title)
	assert.Equal(t, []string{"Serves 8"}, d.Servings())
	assert.Equal(t, []string{"Mash the bananas.", "Bake for 1 hour."}, d.Instructions())

	failing := pipeline.New(pipeline.Deps{Extractor: stubExtractor{err: common.ErrNoRecipeFound}})
	_, err = failing.Start(context.Background(), pipeline.URLSource("https://example.com/about"))
	assert.ErrorIs(t, err, common.ErrNoRecipeFound)
	assert.Equal(t, pipeline.StateError, failing.State())
}

func TestStart_BusyWhileProcessing(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	model := classify.ModelFunc(func(context.Context, string) (classify.Label, float64, error) {
		once.Do(func() { close(entered) })
		<-release
		return classify.LabelIngredient, 0.9, nil
	})

	o := pipeline.New(pipeline.Deps{Classifier: classify.New(model)})
	done := make(chan error, 1)
	go func() {
		_, err := o.Start(context.Background(), pipeline.LinesSource([]string{"2 cups flour"}))
		done <- err
	}()

	<-entered
	assert.Equal(t, pipeline.StateProcessing, o.State())
	_, err := o.Start(context.Background(), pipeline.LinesSource([]string{"1 cup sugar"}))
	assert.ErrorIs(t, err, common.ErrPipelineBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, pipeline.StateCompleted, o.State())

	// 完成後可以再次執行
	_, err = o.Start(context.Background(), pipeline.LinesSource([]string{"1 cup sugar"}))
	assert.NoError(t, err)
}

func TestStart_ResultCallbackAndReset(t *testing.T) {
	var got *recipe.Draft
	o := pipeline.New(pipeline.Deps{Classifier: cookieClassifier()}, pipeline.OnResult(func(d *recipe.Draft) { got = d }))

	_, err := o.Start(context.Background(), pipeline.LinesSource(nil))
	require.Error(t, err)

	d, err := o.Start(context.Background(), pipeline.LinesSource(cookieLines))
	require.NoError(t, err)
	assert.Same(t, d, got)
	assert.NoError(t, o.Err())
}

func TestStart_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := pipeline.New(pipeline.Deps{Classifier: cookieClassifier()})
	_, err := o.Start(ctx, pipeline.LinesSource(cookieLines))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, pipeline.StateError, o.State())
}

func TestAcquire(t *testing.T) {
	lines, err := pipeline.Acquire(context.Background(), pipeline.TextSource("a\nb"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	_, err = pipeline.Acquire(context.Background(), pipeline.LinesSource([]string{" ", ""}), nil)
	assert.ErrorIs(t, err, common.ErrNoTextDetected)
}

func TestRunner(t *testing.T) {
	r := pipeline.NewRunner(pipeline.Deps{Classifier: cookieClassifier()},
		pipeline.RunnerOptions{Workers: 2, MaxSize: 4, Timeout: 5 * time.Second})
	defer r.Close()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := r.Submit(context.Background(), pipeline.LinesSource(cookieLines))
			assert.NoError(t, err)
			if assert.NotNil(t, d) {
				assert.Equal(t, "Chocolate Chip Cookies", d.Title)
			}
		}()
	}
	wg.Wait()

	_, err := r.Submit(context.Background(), pipeline.LinesSource(nil))
	assert.ErrorIs(t, err, common.ErrNoTextDetected)

	status := r.Status()
	assert.Equal(t, 4, status.ProcessedCount)
	assert.Equal(t, 1, status.FailedCount)
	assert.Equal(t, 2, status.Workers)
	assert.Equal(t, 4, status.MaxQueueSize)
	assert.Equal(t, 0, status.QueueLength)
}

func TestRunner_QueueFull(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	model := classify.ModelFunc(func(context.Context, string) (classify.Label, float64, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return classify.LabelIngredient, 0.9, nil
	})
	r := pipeline.NewRunner(pipeline.Deps{Classifier: classify.New(model)}, pipeline.RunnerOptions{Workers: 1, MaxSize: 1})

	results := make(chan error, 2)
	submit := func() {
		_, err := r.Submit(context.Background(), pipeline.LinesSource([]string{"2 cups flour"}))
		results <- err
	}

	go submit()
	<-entered
	go submit()
	require.Eventually(t, func() bool { return r.Status().QueueLength == 1 }, time.Second, 5*time.Millisecond)

	_, err := r.Submit(context.Background(), pipeline.LinesSource([]string{"1 cup sugar"}))
	assert.ErrorIs(t, err, common.ErrQueueFull)

	close(release)
	assert.NoError(t, <-results)
	assert.NoError(t, <-results)

	r.Close()
	_, err = r.Submit(context.Background(), pipeline.LinesSource([]string{"1 cup sugar"}))
	assert.ErrorIs(t, err, pipeline.ErrRunnerClosed)
}
