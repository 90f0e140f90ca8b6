package visitors

// ProcessorFieldVisitor collects the rendered changes of every visited field.
type ProcessorFieldVisitor struct {
	*CommonFieldVisitor
	changes []Change
}

// NewProcessorFieldVisitor creates a ProcessorFieldVisitor.
func NewProcessorFieldVisitor(options FormatOptions, acceptedFields []string) *ProcessorFieldVisitor {
	v := &ProcessorFieldVisitor{}
	v.CommonFieldVisitor = NewCommonFieldVisitor(options, acceptedFields, v.record)
	return v
}

// Changes returns the collected changes in visit order.
func (v *ProcessorFieldVisitor) Changes() []Change {
	return v.changes
}

func (v *ProcessorFieldVisitor) record(name, namespace string, oldValue, newValue *string) {
	v.changes = append(v.changes, Change{
		Name:      name,
		Namespace: namespace,
		OldValue:  oldValue,
		NewValue:  newValue,
	})
}

// ProcessorVisitorFactory creates processor visitors with the accepted field
// list configured for the root entity type.
type ProcessorVisitorFactory struct {
	options        FormatOptions
	acceptedByType map[string][]string
}

// NewProcessorVisitorFactory creates a new visitor factory.
func NewProcessorVisitorFactory(options FormatOptions, acceptedByType map[string][]string) *ProcessorVisitorFactory {
	return &ProcessorVisitorFactory{
		options:        options,
		acceptedByType: acceptedByType,
	}
}

// CreateVisitor returns a fresh visitor for change sets rooted at typeName.
func (f *ProcessorVisitorFactory) CreateVisitor(typeName string) *ProcessorFieldVisitor {
	return NewProcessorFieldVisitor(f.options, f.acceptedByType[typeName])
}
