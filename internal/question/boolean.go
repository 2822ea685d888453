package question

// Boolean is a true/false statement question.
type Boolean struct {
	Answer bool
	// Statement is optional supplementary text shown with the prompt.
	Statement string
}

func (Boolean) Kind() Kind { return KindBoolean }
func (Boolean) sealed()    {}

func (b Boolean) SetAnswer(answer bool) Boolean {
	b.Answer = answer
	return b
}

func (b Boolean) SetStatement(text string) Boolean {
	b.Statement = text
	return b
}
