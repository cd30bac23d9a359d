package render

import (
	"bytes"
	"image/color"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/denkrav/tutor_crm/internal/service"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Константы размеров и отступов
const (
	imageWidth        = 1400
	imageHeight       = 900
	headerHeight      = 100
	leftLabelsWidth   = 80
	legendWidth       = 140
	dayPaddingX       = 8
	minEventHeight    = 8.0
	eventBorderRadius = 6.0
	shadowOffset      = 3.0
	totalDaysInWeek   = 7
	hourPaddingTop    = 2
	hourPaddingBot    = 2
	defaultMinHour    = 8
	defaultMaxHour    = 20
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 27.0
	hourLabelFontSize  = 18.0
	eventTimeFontSize  = 17.0
	legendItemFontSize = 12.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	eventFallbackColor = color.RGBA{107, 114, 128, 220}
	eventTextColor     = color.RGBA{250, 250, 252, 240}
	eventShadowColor   = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// weekBounds содержит границы недели
type weekBounds struct {
	start time.Time
	end   time.Time
}

// hourRange содержит диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontOnce   sync.Once
	cachedFont *opentype.Font
)

// loadFont ставит шрифт из файла fontPath или basicfont как fallback.
// Шрифт в репозитории не возится: путь к TTF задаётся конфигурацией.
func loadFont(dc *gg.Context, fontPath string, size float64) {
	fontOnce.Do(func() {
		if fontPath == "" {
			return
		}
		data, err := os.ReadFile(fontPath)
		if err != nil {
			return
		}
		parsed, err := opentype.Parse(data)
		if err != nil {
			return
		}
		cachedFont = parsed
	})

	if cachedFont != nil {
		face, err := opentype.NewFace(cachedFont, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err == nil {
			dc.SetFontFace(face)
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// GenerateWeekImage генерирует изображение недели с занятиями.
// Цвет занятия берётся из календарной модели: статус уже превращён
// в цвет на уровне сервиса.
func GenerateWeekImage(weekStart time.Time, events []service.CalendarEvent, fontPath string) ([]byte, error) {
	week := normalizeToWeekBounds(weekStart)
	today := normalizeToDay(time.Now())
	shouldHighlightToday := isTodayInWeek(today, week)

	eventsByDay := groupEventsByDay(events)
	hours := calculateHourRange(events)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, fontPath, week)
	drawHourLabels(dc, fontPath, hours, cellHeight)
	drawDaysAndEvents(dc, fontPath, week, today, shouldHighlightToday, eventsByDay, hours, dayWidth, dayHeight, cellHeight)
	drawCurrentTimeLine(dc, shouldHighlightToday, hours, cellHeight, dayWidth)
	drawLegend(dc, fontPath, dayWidth)

	return encodeImage(dc)
}

// normalizeToWeekBounds нормализует дату к границам недели (Пн-Вс)
func normalizeToWeekBounds(date time.Time) weekBounds {
	normalized := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())

	daysSinceMonday := int(normalized.Weekday()) - 1
	if normalized.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	start := normalized.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 6)

	return weekBounds{start: start, end: end}
}

// normalizeToDay нормализует время к началу дня
func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isTodayInWeek проверяет, попадает ли сегодня в отображаемую неделю
func isTodayInWeek(today time.Time, week weekBounds) bool {
	return !today.Before(week.start) && !today.After(week.end)
}

// groupEventsByDay группирует события по дням
func groupEventsByDay(events []service.CalendarEvent) map[string][]service.CalendarEvent {
	byDay := make(map[string][]service.CalendarEvent)
	for _, event := range events {
		dateKey := event.Start.Format("2006-01-02")
		byDay[dateKey] = append(byDay[dateKey], event)
	}
	return byDay
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(events []service.CalendarEvent) hourRange {
	minHour := 24
	maxHour := 0

	for _, event := range events {
		startH := event.Start.Hour()
		endH := event.End.Hour()
		if event.End.Minute() > 0 {
			endH++
		}
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := minHour - hourPaddingTop
	endHour := maxHour + hourPaddingBot
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 23 {
		endHour = 23
	}

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour + 1,
	}
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, fontPath string, week weekBounds) {
	startMonth := week.start.Month()
	endMonth := week.end.Month()

	var title string
	if startMonth == endMonth {
		title = getMonthNameRussian(startMonth)
	} else {
		title = getMonthNameRussian(startMonth) + " - " + getMonthNameRussian(endMonth)
	}

	loadFont(dc, fontPath, titleFontSize)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2, float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, fontPath string, hours hourRange, cellHeight float64) {
	loadFont(dc, fontPath, hourLabelFontSize)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < hours.total; hIdx++ {
		actualHour := hours.start + hIdx
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		timeLabel := formatHourLabel(actualHour)
		dc.DrawStringAnchored(timeLabel, float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDaysAndEvents рисует все дни недели с занятиями
func drawDaysAndEvents(dc *gg.Context, fontPath string, week weekBounds, today time.Time, shouldHighlightToday bool,
	eventsByDay map[string][]service.CalendarEvent, hours hourRange, dayWidth, dayHeight int, cellHeight float64) {

	currentDate := week.start

	for dayIndex := 0; dayIndex < totalDaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		isToday := shouldHighlightToday && isSameDay(currentDate, today)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, isToday)
		drawDayHeader(dc, fontPath, currentDate, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)

		dateKey := currentDate.Format("2006-01-02")
		for _, event := range eventsByDay[dateKey] {
			drawEvent(dc, fontPath, event, x, y, dayWidth, hours, cellHeight)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}
}

// isSameDay проверяет, являются ли две даты одним днем
func isSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	if isToday {
		dc.SetColor(todayBgColor)
	} else if dayIndex%2 == 0 {
		dc.SetColor(evenDayColor)
	} else {
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, fontPath string, date time.Time, x, y float64, dayWidth int) {
	weekdayStr := getWeekdayShort(date.Weekday())
	dateStr := date.Format("02.01")

	loadFont(dc, fontPath, dayFontSize)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(dateStr, x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(weekdayStr, x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawEvent рисует одно занятие
func drawEvent(dc *gg.Context, fontPath string, event service.CalendarEvent, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	startHour := float64(event.Start.Hour()) + float64(event.Start.Minute())/60.0
	endHour := float64(event.End.Hour()) + float64(event.End.Minute())/60.0

	eventY := y + (startHour-float64(hours.start))*cellHeight
	eventHeight := (endHour - startHour) * cellHeight
	if eventHeight < minEventHeight {
		eventHeight = minEventHeight
	}

	fillColor := parseHexColor(event.Color)
	eventWidth := float64(dayWidth) - float64(dayPaddingX*2)

	// Тень
	dc.SetColor(eventShadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, eventY+2+shadowOffset, eventWidth, eventHeight-4, eventBorderRadius)
	dc.Fill()

	// Основной блок
	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), eventY+2, eventWidth, eventHeight-4, eventBorderRadius)
	dc.Fill()

	// Рамка
	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), eventY+2, eventWidth, eventHeight-4, eventBorderRadius)
	dc.Stroke()

	// Время
	loadFont(dc, fontPath, eventTimeFontSize)
	dc.SetColor(eventTextColor)
	txtX := x + float64(dayPaddingX) + 8
	txtY := eventY + 8 + 10
	dc.DrawStringAnchored(event.Start.Format("15:04"), txtX, txtY, 0, 0)

	// Имя ученика, если есть место
	if event.Title != "" && eventHeight > 25 {
		title := event.Title
		maxLen := 20
		if len([]rune(title)) > maxLen {
			title = string([]rune(title)[:maxLen-3]) + "..."
		}
		loadFont(dc, fontPath, eventTimeFontSize-2)
		dc.SetColor(eventTextColor)
		dc.DrawStringAnchored(title, txtX, txtY+16, 0, 0)
	}
}

// parseHexColor разбирает цвет вида "#RRGGBB"
func parseHexColor(s string) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return eventFallbackColor
	}
	value, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return eventFallbackColor
	}
	return color.RGBA{
		R: uint8(value >> 16),
		G: uint8(value >> 8),
		B: uint8(value),
		A: 255,
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, shouldHighlight bool, hours hourRange, cellHeight float64, dayWidth int) {
	if !shouldHighlight {
		return
	}

	now := time.Now()
	currentHour := float64(now.Hour()) + float64(now.Minute())/60.0

	if currentHour < float64(hours.start) || currentHour > float64(hours.end) {
		return
	}

	currentTimeY := float64(headerHeight) + (currentHour-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), currentTimeY, float64(leftLabelsWidth+totalDaysInWeek*dayWidth), currentTimeY)
	dc.Stroke()
}

// drawLegend рисует легенду статусов справа
func drawLegend(dc *gg.Context, fontPath string, dayWidth int) {
	legendX := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 10)
	legendY := float64(imageHeight) - 120.0

	legendItems := []struct {
		Label string
		Hex   string
	}{
		{"Запланировано", "#4F46E5"},
		{"Проведено", "#10B981"},
		{"Отменено", "#EF4444"},
		{"Неявка", "#F59E0B"},
	}

	boxW := 20.0
	boxH := 14.0
	liX := legendX
	liY := legendY + 22

	for _, item := range legendItems {
		dc.SetColor(parseHexColor(item.Hex))
		dc.DrawRoundedRectangle(liX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, fontPath, legendItemFontSize)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, liX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// формат числа с двумя цифрами
func formatTwoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func formatHourLabel(h int) string {
	return formatTwoDigits(h) + ":00"
}

// короткие дни недели
func getWeekdayShort(weekday time.Weekday) string {
	weekdays := map[time.Weekday]string{
		time.Monday:    "Пн",
		time.Tuesday:   "Вт",
		time.Wednesday: "Ср",
		time.Thursday:  "Чт",
		time.Friday:    "Пт",
		time.Saturday:  "Сб",
		time.Sunday:    "Вс",
	}
	return weekdays[weekday]
}

// названия месяцев на русском
func getMonthNameRussian(month time.Month) string {
	months := map[time.Month]string{
		time.January:   "Январь",
		time.February:  "Февраль",
		time.March:     "Март",
		time.April:     "Апрель",
		time.May:       "Май",
		time.June:      "Июнь",
		time.July:      "Июль",
		time.August:    "Август",
		time.September: "Сентябрь",
		time.October:   "Октябрь",
		time.November:  "Ноябрь",
		time.December:  "Декабрь",
	}
	return months[month]
}
