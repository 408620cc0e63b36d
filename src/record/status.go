package record

const (
	OutcomeSuccess = "SALVO_COM_SUCESSO"
	ErrorPrefix    = "ERRO: "
)

// Status is the outcome of writing one record.
type Status struct {
	ID  Value
	Err error
}

func Success(id Value) Status { return Status{ID: id} }

func Failure(id Value, err error) Status { return Status{ID: id, Err: err} }

func (s Status) OK() bool { return s.Err == nil }

// Outcome is the success tag, or the error message prefixed with ErrorPrefix.
func (s Status) Outcome() string {
	if s.Err == nil {
		return OutcomeSuccess
	}
	return ErrorPrefix + s.Err.Error()
}
