package bind_group_provider

// BindGroupProviderOption configures a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithIndexCount sets the number of indices drawn from the provider's index buffer.
// Negative counts are stored as zero.
//
// Parameters:
//   - count: the index count
//
// Returns:
//   - BindGroupProviderOption: the option
func WithIndexCount(count int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.indexCount = max(count, 0)
	}
}
