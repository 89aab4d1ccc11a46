package node

func Register() {
	registerExpr()
	registerIf()
	registerRepeat()
	registerLet()
	registerStruct()
	registerSwitch()
}
