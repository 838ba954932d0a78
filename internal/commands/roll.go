package commands

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/slashbot/pkg/cmd"
)

const (
	maxDice   = 100
	maxSides  = 1000
	maxNumber = 1_000_000
	// maxResult bounds every intermediate value, far below the int64 limit.
	maxResult = 1_000_000_000_000_000
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}

	rollSpec = cmd.MustCompile(cmd.Splat("formula"))

	errDivisionByZero = errors.New("division by zero is forbidden. Even in games")
	errNoLeftOperand  = errors.New("syntax error: operator without left operand")
	errTooLarge       = fmt.Errorf("result too large, limit is %d", maxResult)
)

type term struct {
	value int
	desc  string
	op    string
}

// RollCommand rolls dice formulas such as "2d6+1d4*2-3". Multiplication and
// division bind tighter than addition and subtraction.
type RollCommand struct {
	intn func(n int) int
}

// NewRollCommand returns a roll command drawing from intn, which must return
// a value in [0, n). A nil intn uses math/rand.
func NewRollCommand(intn func(n int) int) *RollCommand {
	if intn == nil {
		intn = rand.IntN
	}
	return &RollCommand{intn: intn}
}

func (c *RollCommand) Name() string        { return "roll" }
func (c *RollCommand) Description() string { return "Roll dice with formulas like 2d6+1d4*2" }
func (c *RollCommand) Spec() cmd.Spec      { return rollSpec }

func (c *RollCommand) Run(_ context.Context, inv *cmd.Invocation) {
	formula := strings.Join(inv.Args().Strings("formula"), "")
	if formula == "" {
		formula = "1d6"
	}

	total, pretty, err := c.evaluate(formula)
	if err != nil {
		inv.Done(nil, inv.Reply.Ephemeral(fmt.Sprintf("Can't roll %s: %v", formula, err)))
		return
	}
	inv.Done(nil, inv.Reply.InChannel(
		fmt.Sprintf("Dice roll: %d", total),
		fmt.Sprintf("Input: %s\nCalculation: %s", formula, pretty),
	))
}

// evaluate returns the total of formula and a description of every roll.
func (c *RollCommand) evaluate(formula string) (int, string, error) {
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 {
		return 0, "", errors.New("can't parse the formula, try something like 2d6+1d4*2-3")
	}

	var terms []term
	currentOp := "+"
	for _, token := range tokens {
		if validOps[token] {
			currentOp = token
			continue
		}
		val, desc, err := c.evaluateToken(token)
		if err != nil {
			return 0, "", fmt.Errorf("failed to evaluate %s: %w", token, err)
		}
		terms = append(terms, term{value: val, desc: desc, op: currentOp})
	}

	// * and / first
	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return 0, "", errNoLeftOperand
		}
		prev := merged[len(merged)-1]
		merged = merged[:len(merged)-1]

		var v int
		switch t.op {
		case "*":
			if t.value != 0 && abs(prev.value) > maxResult/abs(t.value) {
				return 0, "", errTooLarge
			}
			v = prev.value * t.value
		case "/":
			if t.value == 0 {
				return 0, "", errDivisionByZero
			}
			v = prev.value / t.value
		}
		merged = append(merged, term{
			value: v,
			desc:  fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc),
			op:    prev.op,
		})
	}

	// + and -
	total := 0
	var details []string
	for _, t := range merged {
		if len(details) > 0 {
			details = append(details, " "+t.op+" ")
		}
		details = append(details, t.desc)
		switch t.op {
		case "+":
			total += t.value
		case "-":
			total -= t.value
		}
		if abs(total) > maxResult {
			return 0, "", errTooLarge
		}
	}
	return total, strings.Join(details, ""), nil
}

func (c *RollCommand) evaluateToken(token string) (int, string, error) {
	matches := diceRegex.FindStringSubmatch(token)
	if matches == nil {
		num, err := strconv.Atoi(token)
		if err != nil {
			return 0, "", errors.New("not a number or dice")
		}
		if num > maxNumber {
			return 0, "", fmt.Errorf("number too big, max %d", maxNumber)
		}
		return num, strconv.Itoa(num), nil
	}

	count := 1
	if matches[1] != "" {
		n, err := strconv.Atoi(matches[1])
		if err != nil {
			return 0, "", errors.New("invalid dice count")
		}
		count = n
	}
	sides, err := strconv.Atoi(matches[2])
	if err != nil || sides < 2 {
		return 0, "", errors.New("invalid dice sides")
	}
	if count > maxDice || sides > maxSides {
		return 0, "", fmt.Errorf("too big. max %d dice, %d sides", maxDice, maxSides)
	}

	sum := 0
	rolls := make([]string, 0, count)
	for range count {
		r := c.intn(sides) + 1
		sum += r
		rolls = append(rolls, strconv.Itoa(r))
	}
	return sum, fmt.Sprintf("%s [%s]", token, strings.Join(rolls, ", ")), nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
