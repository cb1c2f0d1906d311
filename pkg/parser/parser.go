// Package parser 将瑞典语自由文本解析为结构化排班约束
//
// 解析器是纯函数：相同的文本、员工列表和参考时间总是产生相同的结果，
// 并且从不返回错误——信息缺失只会降低置信度。
package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vardschema/vardschema/pkg/logger"
	"github.com/vardschema/vardschema/pkg/model"
)

// 硬约束触发词（出现任意一个即为硬约束）
var hardPhrases = []string{
	"ska inte",
	"kan inte",
	"måste",
	"får inte",
	"behöver",
}

// 软偏好触发词
var softPhrases = []string{
	"vill inte",
	"föredrar inte",
	"helst inte",
	"gärna inte",
}

// shiftKeyword 班次关键词条目
type shiftKeyword struct {
	Word string
	Type model.ShiftType
}

// 班次关键词表，长词在前避免"dag"先于"dagskift"命中
var shiftKeywords = []shiftKeyword{
	{"kvällsskift", model.ShiftEvening},
	{"nattskift", model.ShiftNight},
	{"dagskift", model.ShiftDay},
	{"kväll", model.ShiftEvening},
	{"natt", model.ShiftNight},
	{"dag", model.ShiftDay},
}

// "ledig/ledigt" 表示整日休息，命中后展开为全部三种班次
const freeKeyword = "ledig"

// monthEntry 月份条目（全称和3字母缩写）
type monthEntry struct {
	Name   string
	Abbrev string
	Month  time.Month
}

var months = []monthEntry{
	{"januari", "jan", time.January},
	{"februari", "feb", time.February},
	{"mars", "mar", time.March},
	{"april", "apr", time.April},
	{"maj", "maj", time.May},
	{"juni", "jun", time.June},
	{"juli", "jul", time.July},
	{"augusti", "aug", time.August},
	{"september", "sep", time.September},
	{"oktober", "okt", time.October},
	{"november", "nov", time.November},
	{"december", "dec", time.December},
}

// weekdayEntry 星期条目（全称在前，缩写在后，先命中者生效）
type weekdayEntry struct {
	Name    string
	Weekday time.Weekday
}

var weekdays = []weekdayEntry{
	{"måndag", time.Monday},
	{"tisdag", time.Tuesday},
	{"onsdag", time.Wednesday},
	{"torsdag", time.Thursday},
	{"fredag", time.Friday},
	{"lördag", time.Saturday},
	{"söndag", time.Sunday},
	{"mån", time.Monday},
	{"tis", time.Tuesday},
	{"ons", time.Wednesday},
	{"tor", time.Thursday},
	{"fre", time.Friday},
	{"lör", time.Saturday},
	{"sön", time.Sunday},
}

var (
	// "15 november" / "15-17 november" / "23:e november"
	monthDateRe = regexp.MustCompile(`(\d{1,2})(?:-(\d{1,2}))?(?::?e)?\s+(` + monthAlternation() + `)`)
	// 裸序数 "23e" / "23:e"；后跟月份名的场合由 monthDateRe 处理
	// （Go 正则不支持负向先行断言，改为命中后手工检查后续词）
	ordinalRe = regexp.MustCompile(`(\d{1,2}):?e\b`)
)

// monthAlternation 构造月份名的正则分支，长名在前
func monthAlternation() string {
	var names []string
	for _, m := range months {
		names = append(names, m.Name)
		if m.Abbrev != m.Name {
			names = append(names, m.Abbrev)
		}
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	return strings.Join(names, "|")
}

// lookupMonth 按名称或缩写查找月份
func lookupMonth(name string) (time.Month, bool) {
	for _, m := range months {
		if name == m.Name || name == m.Abbrev {
			return m.Month, true
		}
	}
	return 0, false
}

// Parser 约束解析器
type Parser struct {
	employees []*model.Employee
	now       time.Time
	log       *logger.ParserLogger
}

// New 创建解析器，以当前时间作为年份/月份/星期推断的参考
func New(employees []*model.Employee) *Parser {
	return NewWithReference(employees, time.Now())
}

// NewWithReference 创建使用指定参考时间的解析器（便于测试复现）
func NewWithReference(employees []*model.Employee, now time.Time) *Parser {
	return &Parser{
		employees: employees,
		now:       now,
		log:       logger.NewParserLogger(),
	}
}

// Parse 解析一条自由文本，总是返回结果，从不返回错误
func (p *Parser) Parse(text string) *model.ParsedConstraint {
	lower := strings.ToLower(strings.TrimSpace(text))

	emp := p.resolveEmployee(lower)
	category := classify(lower)
	dates, hasWeekday := p.extractDates(lower)
	shiftTypes := extractShiftTypes(lower, hasWeekday)

	c := &model.ParsedConstraint{
		BaseModel:  model.NewBaseModel(),
		Category:   category,
		ShiftTypes: shiftTypes,
		Dates:      dates,
		RawText:    text,
	}
	if emp != nil {
		id := emp.ID
		c.EmployeeID = &id
		c.EmployeeName = emp.FullName()
	}

	switch {
	case emp != nil && len(shiftTypes) > 0 && len(dates) > 0:
		c.Type = model.ConstraintBlockedSlot
		c.Confidence = model.ConfidenceHigh
		c.Reason = fmt.Sprintf("%s: %s den %s", emp.FullName(), describeShifts(shiftTypes), strings.Join(dates, ", "))
	case emp != nil && len(shiftTypes) > 0:
		c.Type = model.ConstraintShiftPreference
		c.Confidence = model.ConfidenceMedium
		c.Reason = "Inget specifikt datum angivet"
	default:
		c.Type = model.ConstraintUnknown
		c.Confidence = model.ConfidenceLow
		c.Reason = unknownReason(emp, shiftTypes, dates, hasWeekday)
	}

	p.log.ParseResult(string(c.Type), string(c.Confidence), emp != nil)
	return c
}

// ParseAll 批量解析，忽略空白行
func (p *Parser) ParseAll(texts []string) []*model.ParsedConstraint {
	var results []*model.ParsedConstraint
	for _, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		results = append(results, p.Parse(t))
	}
	return results
}

// unknownReason 生成低置信度结果的瑞典语说明
func unknownReason(emp *model.Employee, shiftTypes []model.ShiftType, dates []string, hasWeekday bool) string {
	switch {
	case emp == nil:
		return "Inget personnamn kunde identifieras"
	case len(shiftTypes) == 0 && !hasWeekday:
		return "Ingen skifttyp eller veckodag kunde identifieras"
	case len(dates) == 0:
		return "Inget datum kunde identifieras"
	}
	return "Kunde inte tolka villkoret"
}

// resolveEmployee 解析员工引用
// 优先匹配"名 姓"全名，其次只匹配名；都是大小写不敏感的子串匹配，
// 首个命中即返回（列表顺序决定同名冲突的归属）
func (p *Parser) resolveEmployee(lower string) *model.Employee {
	for _, e := range p.employees {
		full := strings.ToLower(e.FullName())
		if full != "" && strings.Contains(lower, full) {
			return e
		}
	}
	for _, e := range p.employees {
		first := strings.ToLower(strings.TrimSpace(e.FirstName))
		if first != "" && strings.Contains(lower, first) {
			return e
		}
	}
	return nil
}

// classify 判定硬/软约束
// 出现硬触发词，或既无硬也无软触发词时，均视为硬约束
func classify(lower string) model.ConstraintCategory {
	for _, phrase := range hardPhrases {
		if strings.Contains(lower, phrase) {
			return model.ConstraintHard
		}
	}
	for _, phrase := range softPhrases {
		if strings.Contains(lower, phrase) {
			return model.ConstraintSoft
		}
	}
	return model.ConstraintHard
}

// extractShiftTypes 提取班次类型集合
// "ledig/ledigt" 表示整日，展开为全部班次并跳过关键词扫描；
// 文本含星期名时同样跳过扫描，避免"söndag"误命中"dag"
func extractShiftTypes(lower string, hasWeekday bool) []model.ShiftType {
	if strings.Contains(lower, freeKeyword) {
		return model.AllShiftTypes()
	}
	if hasWeekday {
		return nil
	}

	var types []model.ShiftType
	seen := make(map[model.ShiftType]bool)
	remaining := lower
	for _, kw := range shiftKeywords {
		if strings.Contains(remaining, kw.Word) {
			if !seen[kw.Type] {
				seen[kw.Type] = true
				types = append(types, kw.Type)
			}
			// 消除已命中的长词，避免其子串重复命中
			remaining = strings.ReplaceAll(remaining, kw.Word, " ")
		}
	}
	return types
}

// extractDates 提取日期集合（ISO格式，升序去重）
// 星期名优先：命中星期时解析为参考日期之后的下一个该星期，
// 并跳过其余日期模式；否则合并两类子模式的结果——
// "<日>[-<日>] <月份名>"（推断当前年份）和裸序数"<日>:e"（推断当前年月）
func (p *Parser) extractDates(lower string) (dates []string, hasWeekday bool) {
	seen := make(map[string]bool)
	add := func(d string) {
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}

	// 星期名（只取首个命中）
	for _, w := range weekdays {
		if strings.Contains(lower, w.Name) {
			offset := (int(w.Weekday) - int(p.now.Weekday()) + 7) % 7
			if offset == 0 {
				offset = 7
			}
			add(p.now.AddDate(0, 0, offset).Format("2006-01-02"))
			return dates, true
		}
	}

	year := p.now.Year()

	// 子模式一：日期（范围）+ 月份名；to < from 时区间为空
	for _, m := range monthDateRe.FindAllStringSubmatch(lower, -1) {
		month, ok := lookupMonth(m[3])
		if !ok {
			continue
		}
		from, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		to := from
		if m[2] != "" {
			if t, err := strconv.Atoi(m[2]); err == nil {
				to = t
			}
		}
		for day := from; day <= to; day++ {
			if d, ok := buildDate(year, month, day); ok {
				add(d)
			}
		}
	}

	// 子模式二：裸序数（后跟月份名时已由子模式一处理，此处跳过）
	for _, idx := range ordinalRe.FindAllStringSubmatchIndex(lower, -1) {
		if followedByMonth(lower[idx[1]:]) {
			continue
		}
		day, err := strconv.Atoi(lower[idx[2]:idx[3]])
		if err != nil {
			continue
		}
		if d, ok := buildDate(year, p.now.Month(), day); ok {
			add(d)
		}
	}

	sort.Strings(dates)
	return dates, false
}

// followedByMonth 检查剩余文本的下一个词是否为月份名
func followedByMonth(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	for _, m := range months {
		if strings.HasPrefix(rest, m.Name) || strings.HasPrefix(rest, m.Abbrev) {
			return true
		}
	}
	return false
}

// buildDate 构造合法日期，拒绝溢出的日（如2月30日）
func buildDate(year int, month time.Month, day int) (string, bool) {
	if day < 1 || day > 31 {
		return "", false
	}
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Month() != month || d.Day() != day {
		return "", false
	}
	return d.Format("2006-01-02"), true
}

// 瑞典语班次名（面向操作员的说明文本）
var shiftNamesSv = map[model.ShiftType]string{
	model.ShiftDay:     "dagskift",
	model.ShiftEvening: "kvällsskift",
	model.ShiftNight:   "nattskift",
}

// describeShifts 生成班次集合的瑞典语描述
func describeShifts(types []model.ShiftType) string {
	if len(types) == len(model.AllShiftTypes()) {
		return "ledig hela dagen"
	}
	var names []string
	for _, t := range types {
		names = append(names, shiftNamesSv[t])
	}
	return strings.Join(names, ", ")
}

// Vocabulary 解析器支持的封闭词汇表（用于操作员提示）
type Vocabulary struct {
	Months        []string                   `json:"months"`
	Weekdays      []string                   `json:"weekdays"`
	ShiftKeywords map[string]model.ShiftType `json:"shift_keywords"`
	FreeKeyword   string                     `json:"free_keyword"`
	HardPhrases   []string                   `json:"hard_phrases"`
	SoftPhrases   []string                   `json:"soft_phrases"`
}

// GetVocabulary 返回解析器词汇表
func GetVocabulary() Vocabulary {
	monthNames := make([]string, 0, len(months))
	for _, m := range months {
		monthNames = append(monthNames, m.Name)
	}
	// 前7项为全称，其余为缩写
	weekdayNames := make([]string, 0, 7)
	for _, w := range weekdays[:7] {
		weekdayNames = append(weekdayNames, w.Name)
	}
	kw := make(map[string]model.ShiftType, len(shiftKeywords))
	for _, k := range shiftKeywords {
		kw[k.Word] = k.Type
	}
	return Vocabulary{
		Months:        monthNames,
		Weekdays:      weekdayNames,
		ShiftKeywords: kw,
		FreeKeyword:   freeKeyword,
		HardPhrases:   hardPhrases,
		SoftPhrases:   softPhrases,
	}
}
