package assessment

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Artifact is the serialized classifier: a small feedforward trunk with either
// a single combined logit layer over all 12 severity classes or three
// per-condition head layers. Both layouts are in the wild, so both are
// supported and normalized to one distribution per condition right after
// inference.
type Artifact struct {
	SchemaVersion int             `json:"schema_version"`
	OutputLayout  string          `json:"output_layout"`
	Layers        []ArtifactLayer `json:"layers"`
	Heads         []ArtifactLayer `json:"heads,omitempty"`
}

type ArtifactLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"`
}

const (
	LayoutCombined = "combined"
	LayoutSplit    = "split"
)

// combinedClasses is the total width of the combined output layout:
// 5 depression + 4 anxiety + 3 stress classes.
const combinedClasses = 12

// RawOutputs is the tagged variant over the classifier's possible output
// shapes. Callers downstream never see it directly; Distributions resolves it
// once into one ordered probability array per condition.
type RawOutputs struct {
	Combined []float64
	Split    [][]float64
}

// Distributions normalizes either output shape to softmaxed per-condition
// probability arrays in depression/anxiety/stress order.
func (r RawOutputs) Distributions() ([][]float64, error) {
	if r.Combined != nil {
		if len(r.Combined) != combinedClasses {
			return nil, fmt.Errorf("%w: combined output has %d classes, expected %d",
				ErrSchemaMismatch, len(r.Combined), combinedClasses)
		}
		offset := 0
		out := make([][]float64, 0, len(conditionOrder))
		for _, cond := range conditionOrder {
			n := len(Labels(cond))
			out = append(out, softmax(r.Combined[offset:offset+n]))
			offset += n
		}
		return out, nil
	}

	if len(r.Split) != len(conditionOrder) {
		return nil, fmt.Errorf("%w: got %d output heads, expected %d",
			ErrSchemaMismatch, len(r.Split), len(conditionOrder))
	}
	out := make([][]float64, 0, len(conditionOrder))
	for i, cond := range conditionOrder {
		if len(r.Split[i]) != len(Labels(cond)) {
			return nil, fmt.Errorf("%w: %s head has %d classes, expected %d",
				ErrSchemaMismatch, cond, len(r.Split[i]), len(Labels(cond)))
		}
		out = append(out, softmax(r.Split[i]))
	}
	return out, nil
}

type denseLayer struct {
	weights    *mat.Dense
	biases     *mat.VecDense
	activation string
}

// Model is the inference contract the pipeline depends on. The concrete
// Classifier implements it; tests substitute fakes.
type Model interface {
	Scaler() *Scaler
	Predict(features []float64) (RawOutputs, error)
}

// Classifier is a loaded artifact plus its scaler, resident for the process
// lifetime. Predict is pure: same input, same output.
type Classifier struct {
	layers []denseLayer
	heads  []denseLayer
	layout string
	scaler *Scaler
}

func newClassifier(artifact *Artifact, scaler *Scaler, expectedVersion int) (*Classifier, error) {
	if artifact.SchemaVersion != expectedVersion {
		return nil, fmt.Errorf("%w: artifact schema version %d, expected %d",
			ErrSchemaMismatch, artifact.SchemaVersion, expectedVersion)
	}
	if artifact.SchemaVersion != scaler.SchemaVersion {
		return nil, fmt.Errorf("%w: artifact schema version %d, scaler %d",
			ErrSchemaMismatch, artifact.SchemaVersion, scaler.SchemaVersion)
	}
	if err := scaler.validate(expectedVersion); err != nil {
		return nil, err
	}
	if len(artifact.Layers) == 0 {
		return nil, fmt.Errorf("%w: artifact has no layers", ErrSchemaMismatch)
	}

	c := &Classifier{layout: artifact.OutputLayout, scaler: scaler}

	width := FeatureCount
	for i, l := range artifact.Layers {
		layer, outWidth, err := buildLayer(l, width)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		c.layers = append(c.layers, layer)
		width = outWidth
	}

	switch artifact.OutputLayout {
	case LayoutCombined:
		if width != combinedClasses {
			return nil, fmt.Errorf("%w: combined output width %d, expected %d",
				ErrSchemaMismatch, width, combinedClasses)
		}
	case LayoutSplit:
		if len(artifact.Heads) != len(conditionOrder) {
			return nil, fmt.Errorf("%w: %d heads, expected %d",
				ErrSchemaMismatch, len(artifact.Heads), len(conditionOrder))
		}
		for i, h := range artifact.Heads {
			head, outWidth, err := buildLayer(h, width)
			if err != nil {
				return nil, fmt.Errorf("head %d: %w", i, err)
			}
			if want := len(Labels(conditionOrder[i])); outWidth != want {
				return nil, fmt.Errorf("%w: %s head width %d, expected %d",
					ErrSchemaMismatch, conditionOrder[i], outWidth, want)
			}
			c.heads = append(c.heads, head)
		}
	default:
		return nil, fmt.Errorf("%w: unknown output layout %q", ErrSchemaMismatch, artifact.OutputLayout)
	}

	return c, nil
}

func buildLayer(l ArtifactLayer, inWidth int) (denseLayer, int, error) {
	rows := len(l.Weights)
	if rows == 0 {
		return denseLayer{}, 0, fmt.Errorf("%w: empty weight matrix", ErrSchemaMismatch)
	}
	if len(l.Biases) != rows {
		return denseLayer{}, 0, fmt.Errorf("%w: %d biases for %d rows", ErrSchemaMismatch, len(l.Biases), rows)
	}

	flat := make([]float64, 0, rows*inWidth)
	for _, row := range l.Weights {
		if len(row) != inWidth {
			return denseLayer{}, 0, fmt.Errorf("%w: weight row width %d, expected %d",
				ErrSchemaMismatch, len(row), inWidth)
		}
		flat = append(flat, row...)
	}

	return denseLayer{
		weights:    mat.NewDense(rows, inWidth, flat),
		biases:     mat.NewVecDense(rows, append([]float64(nil), l.Biases...)),
		activation: l.Activation,
	}, rows, nil
}

func (c *Classifier) Scaler() *Scaler {
	return c.scaler
}

func (c *Classifier) Predict(features []float64) (RawOutputs, error) {
	if len(features) != FeatureCount {
		return RawOutputs{}, fmt.Errorf("%w: feature vector length %d, expected %d",
			ErrSchemaMismatch, len(features), FeatureCount)
	}

	x := mat.NewVecDense(len(features), append([]float64(nil), features...))
	for _, layer := range c.layers {
		x = layer.apply(x)
	}

	if c.layout == LayoutCombined {
		return RawOutputs{Combined: vecSlice(x)}, nil
	}

	split := make([][]float64, 0, len(c.heads))
	for _, head := range c.heads {
		split = append(split, vecSlice(head.apply(x)))
	}
	return RawOutputs{Split: split}, nil
}

func (l denseLayer) apply(x *mat.VecDense) *mat.VecDense {
	rows, _ := l.weights.Dims()
	y := mat.NewVecDense(rows, nil)
	y.MulVec(l.weights, x)
	y.AddVec(y, l.biases)

	if l.activation == "relu" {
		for i := 0; i < rows; i++ {
			if y.AtVec(i) < 0 {
				y.SetVec(i, 0)
			}
		}
	}
	return y
}

func vecSlice(v *mat.VecDense) []float64 {
	out := make([]float64, v.Len())
	for i := range out {
		out[i] = v.AtVec(i)
	}
	return out
}

// softmax is stable under large logits; it also tolerates inputs that are
// already a distribution only in the sense that it renormalizes consistently.
func softmax(logits []float64) []float64 {
	max := math.Inf(-1)
	for _, v := range logits {
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
