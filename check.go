package polyglot

func checkRequired(value interface{}, message string) {
	switch v := value.(type) {
	case string:
		if "" == v {
			log.Panic(message)
		}

	case int:
		if 0 >= v {
			log.Panic(message)
		}

	default:
		if nil == value {
			log.Panic(message)
		}
	}
}
