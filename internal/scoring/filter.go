package scoring

import (
	"math"
	"sync"

	"github.com/google/cel-go/cel"

	"koiserve/internal/features"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// filterEnv declares one double variable per KOI column plus `row`, a map of
// every raw cell, so expressions like `koi_model_snr > 10 && row.kepoi_name != null`
// compile.
func filterEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		opts := []cel.EnvOption{
			cel.CrossTypeNumericComparisons(true),
			cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		}
		for _, c := range features.Columns {
			opts = append(opts, cel.Variable(c, cel.DoubleType))
		}
		celEnv, celEnvErr = cel.NewEnv(opts...)
	})
	return celEnv, celEnvErr
}

// Filter is a compiled row predicate.
type Filter struct {
	prg cel.Program
}

// CompileFilter compiles a boolean CEL expression. An empty expression yields a nil Filter.
func CompileFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	env, err := filterEnv()
	if err != nil {
		return nil, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, filterErrorf("compile: %v", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, filterErrorf("expression must return bool, got %v", ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, filterErrorf("program: %v", err)
	}
	return &Filter{prg: prg}, nil
}

// Match evaluates the filter on one decoded row. Absent or non-numeric KOI
// columns are NaN, so comparisons on them are false.
func (f *Filter) Match(row map[string]any) (bool, error) {
	if f == nil {
		return true, nil
	}
	vars := make(map[string]any, features.Count+1)
	vars["row"] = row
	for _, c := range features.Columns {
		v, ok := row[c].(float64)
		if !ok {
			v = math.NaN()
		}
		vars[c] = v
	}
	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, filterErrorf("eval: %v", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, filterErrorf("expression must return bool, got %T", out.Value())
	}
	return b, nil
}
