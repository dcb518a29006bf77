package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

// runner одна сессия инференса. Не потокобезопасна: пул выдаёт её одному вызывающему.
type runner interface {
	Run(input []float32) ([]float32, error)
	Destroy()
}

// session сессия ONNX Runtime с заранее выделенными тензорами.
type session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func newSession(cfg Config) (*session, error) {
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()

	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			return nil, fmt.Errorf("set intra-op threads: %w", err)
		}
		if err := options.SetInterOpNumThreads(cfg.Threads); err != nil {
			return nil, fmt.Errorf("set inter-op threads: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(cfg.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	s, err := ort.NewAdvancedSession(cfg.ModelPath,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		options)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &session{session: s, input: input, output: output}, nil
}

// Run копирует вход в тензор, запускает модель и возвращает копию выхода.
func (s *session) Run(input []float32) ([]float32, error) {
	copy(s.input.GetData(), input)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

func (s *session) Destroy() {
	if s.session != nil {
		s.session.Destroy()
	}
	if s.input != nil {
		s.input.Destroy()
	}
	if s.output != nil {
		s.output.Destroy()
	}
}
