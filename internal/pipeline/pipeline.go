package pipeline

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
		// Stop at the first stage that produced diagnostics: the language is
		// fail-fast, later stages never see a partial result.
		if len(ctx.Errors) > 0 {
			return ctx
		}
	}
	return ctx
}
