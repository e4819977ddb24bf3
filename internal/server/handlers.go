package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fastjson"

	calcula "go.calcula.dev/pkg"
	"go.calcula.dev/pkg/calculators"
)

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Display string `json:"display"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		status = http.StatusUnprocessableEntity
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{
			Error:   fmt.Sprintf("result cannot be represented: %v", err),
			Kind:    "not_finite",
			Display: "Error",
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   fmt.Sprintf(format, args...),
		Kind:    "bad_request",
		Display: "Error",
	})
}

// writeCalcError reports a failed calculation. These are the caller's
// fault and never 5xx.
func writeCalcError(w http.ResponseWriter, err error) {
	kind := calcula.ErrorKind(err)
	switch {
	case errors.Is(err, calculators.ErrDivisionByZero):
		kind = "division_by_zero"
	case errors.Is(err, calculators.ErrInvalidInput):
		kind = "invalid_input"
	}

	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: kind, Display: "Error"})
}

// readBody parses the request body with a pooled parser and hands the
// value to fn. The value must not escape fn.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request, fn func(v *fastjson.Value)) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Kind: "bad_request", Display: "Error"})
			return
		}

		badRequest(w, "failed to read body: %v", err)
		return
	}

	p := s.parser.Get()
	defer s.parser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		badRequest(w, "invalid JSON: %v", err)
		return
	}

	if v.Type() != fastjson.TypeObject {
		badRequest(w, "request body must be a JSON object")
		return
	}

	fn(v)
}

func requiredString(v *fastjson.Value, key string) (string, error) {
	f := v.Get(key)
	if f == nil {
		return "", fmt.Errorf("missing %q", key)
	}

	b, err := f.StringBytes()
	if err != nil {
		return "", fmt.Errorf("%q must be a string", key)
	}

	return string(b), nil
}

func optionalString(v *fastjson.Value, key string) (string, error) {
	if !v.Exists(key) {
		return "", nil
	}

	return requiredString(v, key)
}

func variables(v *fastjson.Value) (map[string]float64, error) {
	f := v.Get("variables")
	if f == nil {
		return nil, nil
	}

	obj, err := f.Object()
	if err != nil {
		return nil, fmt.Errorf(`"variables" must be an object`)
	}

	vars := make(map[string]float64)
	obj.Visit(func(key []byte, val *fastjson.Value) {
		if err != nil {
			return
		}

		var x float64
		if x, err = val.Float64(); err != nil {
			err = fmt.Errorf("variable %q must be a number", key)
			return
		}

		vars[string(key)] = x
	})

	return vars, err
}

// number encodes v for JSON; sentinels have no JSON representation and
// become null next to the "Error" display string.
func number(v float64) *float64 {
	if calcula.IsSentinel(v) {
		return nil
	}

	return &v
}

func (s *Server) calculator(angle string) (*calcula.Calculator, error) {
	unit, err := calcula.ParseAngleUnit(angle)
	if err != nil {
		return nil, err
	}

	return calcula.NewCalculator(calcula.WithSymbols(s.symbols), calcula.WithAngleUnit(unit)), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

type functionInfo struct {
	Name           string `json:"name"`
	Arity          int    `json:"arity"`
	Differentiable bool   `json:"differentiable"`
	Compilable     bool   `json:"compilable"`
}

type constantInfo struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	x := &calcula.Variable{Name: calcula.DefaultVariable}

	var fns []functionInfo
	for _, fn := range s.symbols.Functions() {
		args := make([]calcula.Expr, fn.Arity)
		for i := range args {
			args[i] = x
		}

		_, err := calcula.Differentiate(&calcula.FuncCall{Name: fn.Name, Args: args}, x.Name)
		fns = append(fns, functionInfo{
			Name:           fn.Name,
			Arity:          fn.Arity,
			Differentiable: err == nil,
			Compilable:     fn.Libm != "",
		})
	}

	var consts []constantInfo
	for _, c := range s.symbols.Constants() {
		consts = append(consts, constantInfo{Name: c.Name, Value: c.Value})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"functions":   fns,
		"constants":   consts,
		"calculators": calculators.Kinds(),
	})
}

type evaluateResponse struct {
	Expression string   `json:"expression"`
	Value      *float64 `json:"value"`
	Display    string   `json:"display"`
	Angle      string   `json:"angle"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	s.readBody(w, r, func(v *fastjson.Value) {
		input, err := requiredString(v, "expression")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		vars, err := variables(v)
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		angle, err := optionalString(v, "angle")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		calc, err := s.calculator(angle)
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		expr, err := calcula.Parse(input)
		if err != nil {
			writeCalcError(w, err)
			return
		}

		res := calc.EvaluateExpr(expr, calcula.EnvOf(vars))
		if res.Err != nil {
			writeCalcError(w, res.Err)
			return
		}

		writeJSON(w, http.StatusOK, evaluateResponse{
			Expression: calcula.Render(expr),
			Value:      number(res.Value),
			Display:    res.Display,
			Angle:      calc.Angle().String(),
		})
	})
}

type derivativeResponse struct {
	Expression string   `json:"expression"`
	Variable   string   `json:"variable"`
	Order      int      `json:"order"`
	Derivative string   `json:"derivative"`
	LaTeX      string   `json:"latex"`
	At         *float64 `json:"at,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Display    string   `json:"display,omitempty"`
}

func (s *Server) handleDerivative(w http.ResponseWriter, r *http.Request) {
	s.readBody(w, r, func(v *fastjson.Value) {
		input, err := requiredString(v, "expression")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		variable, err := optionalString(v, "variable")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		opts := calcula.DeriveOptions{Order: 1}
		if f := v.Get("raw"); f != nil {
			if opts.Raw, err = f.Bool(); err != nil {
				badRequest(w, `"raw" must be a boolean`)
				return
			}
		}

		if f := v.Get("order"); f != nil {
			if opts.Order, err = f.Int(); err != nil || opts.Order < 1 || opts.Order > calcula.MaxDerivativeOrder {
				badRequest(w, `"order" must be an integer between 1 and %d`, calcula.MaxDerivativeOrder)
				return
			}
		}

		vars, err := variables(v)
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		calc, _ := s.calculator("")
		d := calc.Derive(input, variable, opts)
		if d.Err != nil {
			writeCalcError(w, d.Err)
			return
		}

		resp := derivativeResponse{
			Expression: calcula.Render(d.Input),
			Variable:   d.Variable,
			Order:      opts.Order,
			Derivative: d.Text,
			LaTeX:      d.LaTeX,
		}

		if f := v.Get("at"); f != nil {
			at, err := f.Float64()
			if err != nil {
				badRequest(w, `"at" must be a number`)
				return
			}

			res := calc.At(d, at, vars)
			if res.Err != nil {
				writeCalcError(w, res.Err)
				return
			}

			resp.At = &at
			resp.Value = number(res.Value)
			resp.Display = res.Display
		}

		writeJSON(w, http.StatusOK, resp)
	})
}

type parseResponse struct {
	AST        json.RawMessage `json:"ast"`
	Normalized string          `json:"normalized"`
	LaTeX      string          `json:"latex"`
	Variables  []string        `json:"variables"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	s.readBody(w, r, func(v *fastjson.Value) {
		input, err := requiredString(v, "expression")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		expr, err := calcula.Parse(input)
		if err != nil {
			writeCalcError(w, err)
			return
		}

		vars := calcula.FreeVariables(expr)
		if vars == nil {
			vars = []string{}
		}

		writeJSON(w, http.StatusOK, parseResponse{
			AST:        calcula.MarshalExpr(expr),
			Normalized: calcula.Render(expr),
			LaTeX:      calcula.LaTeX(expr),
			Variables:  vars,
		})
	})
}

func (s *Server) handleIR(w http.ResponseWriter, r *http.Request) {
	s.readBody(w, r, func(v *fastjson.Value) {
		input, err := requiredString(v, "expression")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		name, err := optionalString(v, "name")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		var params []string
		if f := v.Get("params"); f != nil {
			arr, err := f.Array()
			if err != nil {
				badRequest(w, `"params" must be an array of strings`)
				return
			}

			for _, p := range arr {
				b, err := p.StringBytes()
				if err != nil {
					badRequest(w, `"params" must be an array of strings`)
					return
				}

				params = append(params, string(b))
			}
		}

		angle, err := optionalString(v, "angle")
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		calc, err := s.calculator(angle)
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		mod, err := calc.Compile(input, name, params)
		if err != nil {
			writeCalcError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"ir": mod.String()})
	})
}

// calcParams flattens the "params" object; numbers keep their JSON text.
func calcParams(v *fastjson.Value) (calculators.Params, error) {
	params := make(calculators.Params)

	f := v.Get("params")
	if f == nil {
		return params, nil
	}

	obj, err := f.Object()
	if err != nil {
		return nil, fmt.Errorf(`"params" must be an object`)
	}

	obj.Visit(func(key []byte, val *fastjson.Value) {
		if err != nil {
			return
		}

		switch val.Type() {
		case fastjson.TypeString:
			params[string(key)] = string(val.GetStringBytes())
		case fastjson.TypeNumber:
			params[string(key)] = string(val.MarshalTo(nil))
		case fastjson.TypeArray:
			// integer lists for hcf and lcm
			var b []byte
			for i, item := range val.GetArray() {
				if i > 0 {
					b = append(b, ',')
				}
				b = item.MarshalTo(b)
			}
			params[string(key)] = string(b)
		default:
			err = fmt.Errorf("param %q must be a string, number or array", key)
		}
	})

	return params, err
}

func (s *Server) handleCalc(w http.ResponseWriter, r *http.Request) {
	kind, err := calculators.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found", Display: "Error"})
		return
	}

	s.readBody(w, r, func(v *fastjson.Value) {
		params, err := calcParams(v)
		if err != nil {
			badRequest(w, "%v", err)
			return
		}

		result, err := calculators.Run(kind, params, s.rules)
		if err != nil {
			writeCalcError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"kind":   kind.String(),
			"result": result,
		})
	})
}
