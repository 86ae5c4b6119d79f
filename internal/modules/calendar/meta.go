package calendar

// constellation returns the western star-sign name for a civil month/day.
func constellation(month, day int) string {
	switch {
	case (month == 12 && day >= 22) || (month == 1 && day <= 19):
		return "摩羯座"
	case (month == 1 && day >= 20) || (month == 2 && day <= 18):
		return "水瓶座"
	case (month == 2 && day >= 19) || (month == 3 && day <= 20):
		return "双鱼座"
	case (month == 3 && day >= 21) || (month == 4 && day <= 19):
		return "白羊座"
	case (month == 4 && day >= 20) || (month == 5 && day <= 20):
		return "金牛座"
	case (month == 5 && day >= 21) || (month == 6 && day <= 21):
		return "双子座"
	case (month == 6 && day >= 22) || (month == 7 && day <= 22):
		return "巨蟹座"
	case (month == 7 && day >= 23) || (month == 8 && day <= 22):
		return "狮子座"
	case (month == 8 && day >= 23) || (month == 9 && day <= 22):
		return "处女座"
	case (month == 9 && day >= 23) || (month == 10 && day <= 23):
		return "天秤座"
	case (month == 10 && day >= 24) || (month == 11 && day <= 22):
		return "天蝎座"
	default:
		return "射手座"
	}
}

// season returns the season label for a civil month.
func season(month int) string {
	switch {
	case month >= 3 && month <= 5:
		return "春季"
	case month >= 6 && month <= 8:
		return "夏季"
	case month >= 9 && month <= 11:
		return "秋季"
	default:
		return "冬季"
	}
}
