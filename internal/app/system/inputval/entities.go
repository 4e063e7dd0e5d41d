package inputval

// Project validates a project name.
func Project(name string) Errors {
	var errs Errors
	if Presence(&errs, "name", name) {
		Length(&errs, "name", name, 0, ProjectNameMax)
	}
	return errs
}

// Task validates the writable task fields as they will be stored.
func Task(title, status string) Errors {
	var errs Errors
	if Presence(&errs, "title", title) {
		Length(&errs, "title", title, TaskTitleMin, TaskTitleMax)
	}
	if Presence(&errs, "status", status) {
		Length(&errs, "status", status, 0, TaskStatusMax)
	}
	return errs
}

// Registration validates a new account.
func Registration(name, email, password, confirmation string) Errors {
	var errs Errors
	if Presence(&errs, "name", name) {
		Length(&errs, "name", name, 0, UserNameMax)
	}
	if Presence(&errs, "email", email) && !IsValidEmail(email) {
		errs.Add("email", MsgInvalid)
	}
	checkPassword(&errs, password, confirmation, true)
	return errs
}

// UserUpdate validates a partial profile update; nil fields are not being
// changed and are skipped.
func UserUpdate(name, email, password, confirmation *string) Errors {
	var errs Errors
	if name != nil && Presence(&errs, "name", *name) {
		Length(&errs, "name", *name, 0, UserNameMax)
	}
	if email != nil && Presence(&errs, "email", *email) && !IsValidEmail(*email) {
		errs.Add("email", MsgInvalid)
	}
	if password != nil {
		conf := ""
		hasConf := confirmation != nil
		if hasConf {
			conf = *confirmation
		}
		checkPassword(&errs, *password, conf, hasConf)
	}
	return errs
}

func checkPassword(errs *Errors, password, confirmation string, checkConfirmation bool) {
	if Presence(errs, "password", password) {
		Length(errs, "password", password, PasswordMin, 0)
	}
	if checkConfirmation && confirmation != password {
		errs.Add("password_confirmation", MsgConfirmation)
	}
}
