package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// RegisterModules registers the engine global into L:
//
//	engine.log.{debug,info,warn,error}(msg)
//	engine.dice.chance(p) -> bool
//	engine.dice.intn(n) -> number in [0, n)
//	engine.combatant(uid) -> table or nil
//	engine.enemies(uid), engine.allies(uid) -> array of tables
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "combatant", L.NewFunction(func(L *lua.LState) int {
		q := m.currentQuery()
		if q == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(combatantTable(L, q.Combatant(L.CheckString(1))))
		return 1
	}))
	L.SetField(engine, "enemies", L.NewFunction(func(L *lua.LState) int {
		return m.pushList(L, func(q CombatantQuery, uid string) []*CombatantInfo { return q.Enemies(uid) })
	}))
	L.SetField(engine, "allies", L.NewFunction(func(L *lua.LState) int {
		return m.pushList(L, func(q CombatantQuery, uid string) []*CombatantInfo { return q.Allies(uid) })
	}))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, logFn := range levels {
		L.SetField(mod, name, L.NewFunction(func(L *lua.LState) int {
			logFn(L.CheckString(1), zap.String("source", "lua"))
			return 0
		}))
	}
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(dice.Chance(m.src, float64(L.CheckNumber(1)))))
		return 1
	}))
	L.SetField(mod, "intn", L.NewFunction(func(L *lua.LState) int {
		n := L.CheckInt(1)
		if n <= 0 {
			L.Push(lua.LNumber(0))
			return 1
		}
		L.Push(lua.LNumber(m.src.Intn(n)))
		return 1
	}))
	return mod
}

func (m *Manager) pushList(L *lua.LState, list func(CombatantQuery, string) []*CombatantInfo) int {
	out := L.NewTable()
	if q := m.currentQuery(); q != nil {
		for _, c := range list(q, L.CheckString(1)) {
			out.Append(combatantTable(L, c))
		}
	}
	L.Push(out)
	return 1
}

// combatantTable converts c to a Lua table; nil becomes LNil.
func combatantTable(L *lua.LState, c *CombatantInfo) lua.LValue {
	if c == nil {
		return lua.LNil
	}
	t := L.NewTable()
	L.SetField(t, "uid", lua.LString(c.UID))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "team", lua.LString(c.Team))
	L.SetField(t, "position", lua.LString(c.Position))
	L.SetField(t, "hp", lua.LNumber(c.HP))
	L.SetField(t, "max_hp", lua.LNumber(c.MaxHP))
	L.SetField(t, "mp", lua.LNumber(c.MP))
	L.SetField(t, "max_mp", lua.LNumber(c.MaxMP))
	L.SetField(t, "sp", lua.LNumber(c.SP))
	L.SetField(t, "max_sp", lua.LNumber(c.MaxSP))
	L.SetField(t, "alive", lua.LBool(c.HP > 0))
	pct := 0.0
	if c.MaxHP > 0 {
		pct = float64(c.HP) / float64(c.MaxHP) * 100
	}
	L.SetField(t, "hp_pct", lua.LNumber(pct))
	statuses := L.NewTable()
	for _, s := range c.Statuses {
		statuses.Append(lua.LString(s))
	}
	L.SetField(t, "statuses", statuses)
	return t
}
