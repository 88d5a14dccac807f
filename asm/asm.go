package asm

// Assemble runs the full pipeline over one source file and returns the flat
// binary image: the encoded instruction stream followed by the data
// segment. The error, if any, is the first diagnostic of the stage that
// failed.
func Assemble(source string) ([]byte, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}

	prog, err := Parse(tokens)
	if err != nil {
		return nil, err
	}

	if err := Resolve(prog); err != nil {
		return nil, err
	}

	code, err := EncodeProgram(prog)
	if err != nil {
		return nil, err
	}

	return append(code, prog.Data...), nil
}
